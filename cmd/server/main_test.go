package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pickem-tracker/internal/errors"
)

func execute(ctx context.Context, args ...string) error {
	cmd := newServerCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func TestServerCmd_MissingConfigFile(t *testing.T) {
	err := execute(context.Background(), "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfig))
}

func TestServerCmd_RejectsArgs(t *testing.T) {
	assert.Error(t, execute(context.Background(), "extra"))
}

func TestServerCmd_ShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "pickem.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
server:
  port: "0"
database:
  path: `+filepath.Join(dir, "pickem.db")+`
sheets:
  xlsx_path: `+filepath.Join(dir, "absent.xlsx")+`
log:
  output: discard
`), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- execute(ctx, "--config", configFile) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
