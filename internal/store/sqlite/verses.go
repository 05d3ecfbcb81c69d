package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// GetVerse returns the stored text for ref.
func (s *Store) GetVerse(ctx context.Context, ref domain.VerseRef) (*domain.Verse, error) {
	v := domain.Verse{VerseRef: ref}
	err := s.db.QueryRowContext(ctx, `
		SELECT text FROM verses
		WHERE book_id = ? AND chapter = ? AND verse = ? AND version = ?`,
		ref.BookID, ref.Chapter, ref.Verse, ref.Version,
	).Scan(&v.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("verse", ref.Key())
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertVerse stores or replaces verse text.
func (s *Store) UpsertVerse(ctx context.Context, v *domain.Verse) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verses (book_id, chapter, verse, version, text)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (book_id, chapter, verse, version) DO UPDATE SET text = excluded.text`,
		v.BookID, v.Chapter, v.Verse, v.Version, v.Text,
	)
	return err
}
