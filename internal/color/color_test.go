package color

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#ffeb3b", "#FFEB3B", false},
		{"ffeb3b", "#FFEB3B", false},
		{" #00ff00 ", "#00FF00", false},
		{"#fe3", "#FFEE33", false},
		{"#12345", "", true},
		{"#GGGGGG", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPalette(t *testing.T) {
	p := Default()

	assert.Equal(t, len(defaultColors), p.Len())
	assert.True(t, p.Contains("#ffeb3b"))
	assert.True(t, p.Contains("FFEB3B"))
	assert.False(t, p.Contains("#123456"))

	c, ok := p.Lookup("2196f3")
	require.True(t, ok)
	assert.Equal(t, "Blue", c.DefaultName)
}

func TestNewPalette_RejectsDuplicates(t *testing.T) {
	_, err := NewPalette([]domain.HighlightColor{
		{Hex: "#FF0000", DefaultName: "Red"},
		{Hex: "#ff0000", DefaultName: "Also red"},
	})
	assert.ErrorContains(t, err, "duplicate")
}

func TestNewPalette_RejectsEmpty(t *testing.T) {
	_, err := NewPalette(nil)
	assert.Error(t, err)
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	content := "colors:\n  - hex: \"#ff0000\"\n    name: Red\n  - hex: \"00FF00\"\n    name: Green\n  - hex: \"#0000ff\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadPalette(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"#FF0000", "#00FF00", "#0000FF"}, p.Hexes())
	c, _ := p.Lookup("#0000FF")
	assert.Equal(t, "#0000FF", c.DefaultName)
}

func TestLoadPalette_BadHex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colors:\n  - hex: nope\n"), 0o600))

	_, err := LoadPalette(path)
	assert.Error(t, err)
}
