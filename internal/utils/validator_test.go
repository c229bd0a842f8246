package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateParticipantName(t *testing.T) {
	assert.NoError(t, ValidateParticipantName("Alice"))
	assert.NoError(t, ValidateParticipantName("Zoë O'Neil"))
	assert.Error(t, ValidateParticipantName(""))
	assert.Error(t, ValidateParticipantName("   "))
	assert.Error(t, ValidateParticipantName("bad\x00name"))
	assert.Error(t, ValidateParticipantName(strings.Repeat("a", maxNameLength+1)))
}

func TestValidateSheetID(t *testing.T) {
	assert.NoError(t, ValidateSheetID("1AbC-d_E9"))
	assert.Error(t, ValidateSheetID(""))
	assert.Error(t, ValidateSheetID("abc/def"))
}

func TestValidateGID(t *testing.T) {
	assert.NoError(t, ValidateGID("0"))
	assert.NoError(t, ValidateGID("123456"))
	assert.Error(t, ValidateGID(""))
	assert.Error(t, ValidateGID("12a"))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "informational", FoldKey("  Informational "))
	assert.Equal(t, "straße", FoldKey("STRAßE"))
	assert.Equal(t, "", FoldKey("   "))
}
