// Package domain holds the core Versemark types: palette colors, category assignments and highlights.
package domain

import (
	"slices"
	"time"
)

// OtherCategory is the synthetic catch-all category for highlighted colors with no labels.
// It is derived, never stored, and cannot be used as a label.
const OtherCategory = "OTHER"

// HighlightColor is an immutable palette entry.
type HighlightColor struct {
	Hex         string `json:"hex" yaml:"hex"`
	DefaultName string `json:"default_name" yaml:"name"`
}

// CategoryAssignment maps one palette color to the set of category labels it belongs to.
// A color has at most one assignment. An assignment with no labels counts as unassigned.
type CategoryAssignment struct {
	Color     string    `json:"color"`
	Labels    []string  `json:"labels"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether the assignment carries no labels.
func (a *CategoryAssignment) IsEmpty() bool {
	return a == nil || len(a.Labels) == 0
}

// HasLabel reports whether name is one of the assignment's labels.
func (a *CategoryAssignment) HasLabel(name string) bool {
	return a != nil && slices.Contains(a.Labels, name)
}

// Clone returns a copy whose label slice is not shared with the receiver.
func (a *CategoryAssignment) Clone() *CategoryAssignment {
	c := *a
	c.Labels = slices.Clone(a.Labels)
	return &c
}

// Touch updates the UpdatedAt timestamp.
func (a *CategoryAssignment) Touch() {
	a.UpdatedAt = time.Now()
}

// Category is a derived grouping of highlights under one label name.
type Category struct {
	Name      string   `json:"name"`
	Synthetic bool     `json:"synthetic"`
	Colors    []string `json:"colors"`
}

// IsOther reports whether name refers to the synthetic catch-all category.
func IsOther(name string) bool {
	return name == OtherCategory
}
