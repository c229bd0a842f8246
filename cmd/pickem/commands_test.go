package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pickem-tracker/internal/auth"
	"pickem-tracker/internal/models"
)

// writeFixture crée un classeur et un fichier de configuration qui le référence
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Contest")
	require.NoError(t, err)
	_, err = f.NewSheet("Results")
	require.NoError(t, err)

	contest := [][]interface{}{
		{"Name", "Score", "Remaining", "Q1 Coin toss?", "Q2 Rain?"},
		{"Alice", 10, 5, "Heads (10 Points)", "Yes"},
		{"Bob", 0, 15, "Tails (10 Points)", "No"},
	}
	for i, row := range contest {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Contest", cell, &row))
	}
	results := [][]interface{}{
		{"Category", "Question ID", "Prompt", "Result"},
		{"Game", "Q1", "Coin toss?", "Heads"},
		{"Weather", "Q2", "Rain?", ""},
	}
	for i, row := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Results", cell, &row))
	}

	workbook := filepath.Join(dir, "pickem.xlsx")
	require.NoError(t, f.SaveAs(workbook))

	configFile := filepath.Join(dir, "pickem.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
sheets:
  xlsx_path: `+workbook+`
  contest_headers: 1
  results_headers: 1
`), 0o644))
	return configFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreboardCommand(t *testing.T) {
	configFile := writeFixture(t)

	out, err := run(t, "scoreboard", "--config", configFile, "--format", "json")
	require.NoError(t, err)

	var board models.Scoreboard
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "Alice", board.Entries[0].Name)
	assert.Equal(t, "1", board.Entries[0].Rank)

	out, err = run(t, "scoreboard", "--config", configFile, "--format", "table", "--name", "Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Coin toss?")
	assert.Contains(t, out, "1/2")

	_, err = run(t, "scoreboard", "--config", configFile, "--name", "Zed", "-o", "json")
	assert.Error(t, err)

	_, err = run(t, "scoreboard", "--config", configFile, "--format", "xml")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	configFile := writeFixture(t)

	out, err := run(t, "export", "--config", configFile, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "question_columns:")
	assert.Contains(t, out, "- Q1")

	out, err = run(t, "export", "--config", configFile)
	require.NoError(t, err)
	var ds models.Dataset
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	assert.Equal(t, []string{"Q1", "Q2"}, ds.QuestionColumns)
	assert.Equal(t, "Heads", ds.QuestionMap["Q1"].Result)
}

func TestHashTokenCommand(t *testing.T) {
	out, err := run(t, "hash-token", "s3cret")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, auth.NewVerifier(hash).Check("s3cret"))

	_, err = run(t, "hash-token", " ")
	assert.Error(t, err)
}
