// Package scripture provides verse text for highlight enrichment.
//
// A Lookup is backed by the record store (StoreLookup), by a remote HTTP API (Client),
// and can be wrapped with an in-memory cache (CachedLookup).
package scripture

import (
	"context"
	"errors"
	"fmt"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// ErrVerseNotFound means the source has no text for the reference.
var ErrVerseNotFound = errors.New("verse not found")

// Lookup returns the scripture text of one verse.
type Lookup interface {
	GetVerseText(ctx context.Context, ref domain.VerseRef) (string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, ref domain.VerseRef) (string, error)

// GetVerseText calls f.
func (f LookupFunc) GetVerseText(ctx context.Context, ref domain.VerseRef) (string, error) {
	return f(ctx, ref)
}

// VerseGetter is the subset of store.Store used by StoreLookup.
type VerseGetter interface {
	GetVerse(ctx context.Context, ref domain.VerseRef) (*domain.Verse, error)
}

// StoreLookup reads verse text from the record store.
type StoreLookup struct {
	verses VerseGetter
}

// NewStoreLookup creates a lookup over the store's verses.
func NewStoreLookup(verses VerseGetter) *StoreLookup {
	return &StoreLookup{verses: verses}
}

// GetVerseText implements Lookup.
func (l *StoreLookup) GetVerseText(ctx context.Context, ref domain.VerseRef) (string, error) {
	v, err := l.verses.GetVerse(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", ref, ErrVerseNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load verse %s: %w", ref, err)
	}
	return v.Text, nil
}
