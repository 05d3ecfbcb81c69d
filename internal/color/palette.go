package color

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/versemark/versemark-server/internal/domain"
)

// Palette is the fixed set of highlight colors. It is built once at startup and never mutated.
type Palette struct {
	colors []domain.HighlightColor
	byHex  map[string]domain.HighlightColor
}

// defaultColors mirrors the reader's built-in highlighter pens.
var defaultColors = []domain.HighlightColor{
	{Hex: "#FFEB3B", DefaultName: "Yellow"},
	{Hex: "#FF9800", DefaultName: "Orange"},
	{Hex: "#F44336", DefaultName: "Red"},
	{Hex: "#E91E63", DefaultName: "Pink"},
	{Hex: "#9C27B0", DefaultName: "Purple"},
	{Hex: "#2196F3", DefaultName: "Blue"},
	{Hex: "#00BCD4", DefaultName: "Cyan"},
	{Hex: "#4CAF50", DefaultName: "Green"},
	{Hex: "#795548", DefaultName: "Brown"},
	{Hex: "#9E9E9E", DefaultName: "Gray"},
}

// NewPalette validates and normalizes the given colors.
// Duplicate or malformed hex values are rejected.
func NewPalette(colors []domain.HighlightColor) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette must contain at least one color")
	}

	p := &Palette{
		colors: make([]domain.HighlightColor, 0, len(colors)),
		byHex:  make(map[string]domain.HighlightColor, len(colors)),
	}
	for i, c := range colors {
		hex, err := Normalize(c.Hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		if _, dup := p.byHex[hex]; dup {
			return nil, fmt.Errorf("palette entry %d: duplicate color %s", i, hex)
		}
		entry := domain.HighlightColor{Hex: hex, DefaultName: c.DefaultName}
		if entry.DefaultName == "" {
			entry.DefaultName = hex
		}
		p.colors = append(p.colors, entry)
		p.byHex[hex] = entry
	}

	return p, nil
}

// Default returns the built-in palette.
func Default() *Palette {
	p, err := NewPalette(defaultColors)
	if err != nil {
		panic(err)
	}
	return p
}

type paletteFile struct {
	Colors []domain.HighlightColor `yaml:"colors"`
}

// LoadPalette reads a YAML palette file of the form:
//
//	colors:
//	  - hex: "#FFEB3B"
//	    name: Yellow
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file: %w", err)
	}

	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse palette file %s: %w", path, err)
	}

	return NewPalette(f.Colors)
}

// Colors returns the palette entries in declaration order.
func (p *Palette) Colors() []domain.HighlightColor {
	return slices.Clone(p.colors)
}

// Hexes returns the normalized hex values in declaration order.
func (p *Palette) Hexes() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = c.Hex
	}
	return out
}

// Contains reports whether hex (in any accepted spelling) is a palette color.
func (p *Palette) Contains(hex string) bool {
	_, ok := p.Lookup(hex)
	return ok
}

// Lookup returns the palette entry for hex.
func (p *Palette) Lookup(hex string) (domain.HighlightColor, bool) {
	n, err := Normalize(hex)
	if err != nil {
		return domain.HighlightColor{}, false
	}
	c, ok := p.byHex[n]
	return c, ok
}

// Len returns the number of colors.
func (p *Palette) Len() int {
	return len(p.colors)
}
