package kv

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// GetVerse returns the stored text for ref.
func (s *Store) GetVerse(ctx context.Context, ref domain.VerseRef) (*domain.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := &domain.Verse{VerseRef: ref}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(verseKey(ref))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NotFound("verse", ref.Key())
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v.Text = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// UpsertVerse stores or replaces verse text.
func (s *Store) UpsertVerse(ctx context.Context, v *domain.Verse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(verseKey(v.VerseRef), []byte(v.Text))
	})
}
