// Package store defines the persistence interface for the Versemark server.
// Backends live in the sqlite and kv subpackages.
package store

import (
	"context"

	"github.com/versemark/versemark-server/internal/domain"
)

// Store is the record store. Every call may fail; there is no transaction spanning calls.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Category assignments, keyed by normalized color hex.
	GetAssignment(ctx context.Context, color string) (*domain.CategoryAssignment, error)
	ListAssignments(ctx context.Context) ([]*domain.CategoryAssignment, error)
	UpsertAssignment(ctx context.Context, a *domain.CategoryAssignment) error
	DeleteAssignment(ctx context.Context, color string) error

	// Highlights. CreateHighlight returns ErrAlreadyExists if the id or the verse reference is taken.
	CreateHighlight(ctx context.Context, h *domain.Highlight) error
	GetHighlight(ctx context.Context, id string) (*domain.Highlight, error)
	UpdateHighlight(ctx context.Context, h *domain.Highlight) error
	DeleteHighlight(ctx context.Context, id string) error
	ListHighlights(ctx context.Context) ([]*domain.Highlight, error)
	ListHighlightsByColors(ctx context.Context, colors []string) ([]*domain.Highlight, error)
	CountHighlightsByColor(ctx context.Context) (map[string]int, error)
	// DeleteHighlights removes one batch of ids atomically and returns how many rows existed.
	// Unknown ids are ignored.
	DeleteHighlights(ctx context.Context, ids []string) (int, error)

	// Verses back the store-based scripture lookup.
	GetVerse(ctx context.Context, ref domain.VerseRef) (*domain.Verse, error)
	UpsertVerse(ctx context.Context, v *domain.Verse) error
}
