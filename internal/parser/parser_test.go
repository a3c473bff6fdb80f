package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("document.exe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}

func TestParseTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text body"), 0o644))

	units, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "notes.txt", units[0].Source)
	assert.Equal(t, 1, units[0].Number)
	assert.Equal(t, "plain text body", units[0].Text)
}

func TestParseEmptyTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n\t"), 0o644))

	units, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, units)
}
