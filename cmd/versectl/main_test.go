package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes versectl against a throwaway data directory.
func run(t *testing.T, dataPath, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd, a := newRootCmd()
	defer a.close()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-path", dataPath, "--env-file", filepath.Join(dataPath, "none.env")}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestPalette_ListsBuiltInColors(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "palette")
	require.NoError(t, err)
	assert.Contains(t, out, "#FFEB3B")
	assert.Contains(t, out, "Yellow")
}

func TestColorsLabel_ShowsUpInCategories(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "colors", "label", "#4CAF50", "Peace, Joy")
	require.NoError(t, err)
	assert.Contains(t, out, "#4CAF50  Peace, Joy")

	out, err = run(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Joy")
	assert.Contains(t, out, "Peace")
	assert.NotContains(t, out, "OTHER")

	out, err = run(t, dir, "", "palette")
	require.NoError(t, err)
	assert.Contains(t, out, "Peace, Joy")
}

func TestColorsLabel_RejectsOffPaletteColor(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "colors", "label", "#123456", "Joy")
	require.Error(t, err)
}

func TestColorsUnlabel(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "colors", "label", "#FFEB3B", "Faith")
	require.NoError(t, err)

	out, err := run(t, dir, "", "colors", "unlabel", "#FFEB3B")
	require.NoError(t, err)
	assert.Contains(t, out, "unassigned")

	out, err = run(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Faith")
}

func TestColorsImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "legacy.yaml")
	require.NoError(t, os.WriteFile(file, []byte("\"#FFEB3B\": \"Faith/Hope\"\n\"#4CAF50\": \"\"\n"), 0o600))

	out, err := run(t, dir, "", "colors", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 of 2 rows")

	out, err = run(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Faith")
	assert.Contains(t, out, "Hope")
}

func TestCategoriesDelete_AbortsWithoutConfirmation(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "colors", "label", "#FFEB3B", "Faith")
	require.NoError(t, err)

	out, err := run(t, dir, "n\n", "categories", "delete", "Faith")
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	out, err = run(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Faith")
}

func TestCategoriesDelete_WithYes(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "colors", "label", "#FFEB3B", "Faith")
	require.NoError(t, err)

	out, err := run(t, dir, "", "categories", "delete", "Faith", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Faith")
	assert.Contains(t, out, "1 removed, 0 updated")

	out, err = run(t, dir, "", "categories", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Faith")
}

func TestCategoriesDelete_UnknownCategoryIsNoop(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "categories", "delete", "Nope", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0")
}

func TestCategoriesDelete_RequiresName(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "categories", "delete", "  ", "--yes")
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Proceed?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Proceed? [y/N]")
	}
}
