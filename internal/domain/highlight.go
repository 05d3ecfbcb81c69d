package domain

import (
	"fmt"
	"time"
)

// VerseRef identifies one verse in one Bible version.
type VerseRef struct {
	BookID  string `json:"book_id"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Version string `json:"version"`
}

// String renders the reference for logs, e.g. "JHN 3:16 (KJV)".
func (r VerseRef) String() string {
	return fmt.Sprintf("%s %d:%d (%s)", r.BookID, r.Chapter, r.Verse, r.Version)
}

// Key is a stable, colon-separated form used as a store and cache key.
func (r VerseRef) Key() string {
	return fmt.Sprintf("%s:%d:%d:%s", r.BookID, r.Chapter, r.Verse, r.Version)
}

// Less orders references by book, chapter, verse, then version.
func (r VerseRef) Less(o VerseRef) bool {
	if r.BookID != o.BookID {
		return r.BookID < o.BookID
	}
	if r.Chapter != o.Chapter {
		return r.Chapter < o.Chapter
	}
	if r.Verse != o.Verse {
		return r.Verse < o.Verse
	}
	return r.Version < o.Version
}

// Highlight is a colored mark on a single verse.
// There is at most one highlight per VerseRef.
type Highlight struct {
	VerseRef
	ID    string `json:"id"`
	Color string `json:"color"`
	// Label is an explicit single-category tag chosen when highlighting.
	// When set it is authoritative over text-based disambiguation.
	Label *string `json:"label,omitempty"`
	// Text is the verse text, only populated by enrichment. Never persisted with the highlight.
	Text      *string   `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the verse this highlight marks.
func (h *Highlight) Ref() VerseRef {
	return h.VerseRef
}

// HasLabel reports whether the highlight carries an explicit label.
func (h *Highlight) HasLabel() bool {
	return h.Label != nil && *h.Label != ""
}

// HasText reports whether the verse text has been fetched.
func (h *Highlight) HasText() bool {
	return h.Text != nil
}

// Touch updates the UpdatedAt timestamp.
func (h *Highlight) Touch() {
	h.UpdatedAt = time.Now()
}

// Clone returns a deep copy so callers can fill in Text without touching shared records.
func (h *Highlight) Clone() *Highlight {
	c := *h
	if h.Label != nil {
		label := *h.Label
		c.Label = &label
	}
	if h.Text != nil {
		text := *h.Text
		c.Text = &text
	}
	return &c
}

// WithText returns a copy of the highlight with its verse text set.
func (h *Highlight) WithText(text string) *Highlight {
	c := h.Clone()
	c.Text = &text
	return c
}

// Verse is scripture text for one reference, as served by the store-backed lookup.
type Verse struct {
	VerseRef
	Text string `json:"text"`
}
