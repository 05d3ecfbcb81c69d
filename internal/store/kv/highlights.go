package kv

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

func encodeHighlight(h *domain.Highlight) ([]byte, error) {
	row := *h
	row.Text = nil
	data, err := json.Marshal(&row)
	if err != nil {
		return nil, store.InvalidInput("highlight", err)
	}
	return data, nil
}

func decodeHighlight(val []byte) (*domain.Highlight, error) {
	var h domain.Highlight
	if err := json.Unmarshal(val, &h); err != nil {
		return nil, store.InvalidInput("highlight", err)
	}
	return &h, nil
}

func getHighlight(txn *badger.Txn, id string) (*domain.Highlight, error) {
	item, err := txn.Get(highlightKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.NotFound("highlight", id)
	}
	if err != nil {
		return nil, err
	}

	var h *domain.Highlight
	err = item.Value(func(val []byte) error {
		h, err = decodeHighlight(val)
		return err
	})
	return h, err
}

// refOwner returns the id of the highlight on ref, or "" if the verse is free.
func refOwner(txn *badger.Txn, ref domain.VerseRef) (string, error) {
	item, err := txn.Get(refIndexKey(ref))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	return string(val), err
}

func putHighlight(txn *badger.Txn, h *domain.Highlight) error {
	data, err := encodeHighlight(h)
	if err != nil {
		return err
	}
	if err := txn.Set(highlightKey(h.ID), data); err != nil {
		return err
	}
	if err := txn.Set(colorIndexKey(h.Color, h.ID), nil); err != nil {
		return err
	}
	return txn.Set(refIndexKey(h.Ref()), []byte(h.ID))
}

func removeHighlight(txn *badger.Txn, h *domain.Highlight) error {
	if err := txn.Delete(highlightKey(h.ID)); err != nil {
		return err
	}
	if err := txn.Delete(colorIndexKey(h.Color, h.ID)); err != nil {
		return err
	}
	return txn.Delete(refIndexKey(h.Ref()))
}

// CreateHighlight stores a new highlight and its indexes.
// Returns store.ErrAlreadyExists on a duplicate id or verse reference.
func (s *Store) CreateHighlight(ctx context.Context, h *domain.Highlight) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(highlightKey(h.ID)); err == nil {
			return store.AlreadyExists("highlight", h.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		owner, err := refOwner(txn, h.Ref())
		if err != nil {
			return err
		}
		if owner != "" {
			return store.AlreadyExists("highlight", h.Ref().String())
		}

		return putHighlight(txn, h)
	})
}

// GetHighlight retrieves a highlight by id.
func (s *Store) GetHighlight(ctx context.Context, id string) (*domain.Highlight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var h *domain.Highlight
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		h, err = getHighlight(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// UpdateHighlight rewrites an existing highlight, moving its indexes if color or verse changed.
func (s *Store) UpdateHighlight(ctx context.Context, h *domain.Highlight) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := getHighlight(txn, h.ID)
		if err != nil {
			return err
		}

		if existing.Ref() != h.Ref() {
			owner, err := refOwner(txn, h.Ref())
			if err != nil {
				return err
			}
			if owner != "" && owner != h.ID {
				return store.AlreadyExists("highlight", h.Ref().String())
			}
		}

		if err := removeHighlight(txn, existing); err != nil {
			return err
		}
		return putHighlight(txn, h)
	})
}

// DeleteHighlight removes one highlight by id.
func (s *Store) DeleteHighlight(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		h, err := getHighlight(txn, id)
		if err != nil {
			return err
		}
		return removeHighlight(txn, h)
	})
}

// ListHighlights returns every highlight in verse order.
func (s *Store) ListHighlights(ctx context.Context) ([]*domain.Highlight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	highlights := []*domain.Highlight{}
	err := s.db.View(func(txn *badger.Txn) error {
		return iterateValues(txn, []byte(highlightPrefix), func(val []byte) error {
			h, err := decodeHighlight(val)
			if err != nil {
				return err
			}
			highlights = append(highlights, h)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortByRef(highlights)
	return highlights, nil
}

// ListHighlightsByColors resolves the color index for each color and loads the records.
func (s *Store) ListHighlightsByColors(ctx context.Context, colors []string) ([]*domain.Highlight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	highlights := []*domain.Highlight{}
	err := s.db.View(func(txn *badger.Txn) error {
		for _, color := range colors {
			var ids []string
			err := iterateKeys(txn, colorIndexPrefix(color), func(key []byte) error {
				if _, id, ok := parseColorIndexKey(key); ok {
					ids = append(ids, id)
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, id := range ids {
				h, err := getHighlight(txn, id)
				if errors.Is(err, store.ErrNotFound) {
					if s.logger != nil {
						s.logger.Warn("Dangling color index entry", "color", color, "highlight_id", id)
					}
					continue
				}
				if err != nil {
					return err
				}
				highlights = append(highlights, h)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByRef(highlights)
	return highlights, nil
}

// CountHighlightsByColor counts color index entries.
func (s *Store) CountHighlightsByColor(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	err := s.db.View(func(txn *badger.Txn) error {
		return iterateKeys(txn, []byte(highlightByColorPrefix), func(key []byte) error {
			if color, _, ok := parseColorIndexKey(key); ok {
				counts[color]++
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteHighlights deletes a batch of ids in a single transaction.
func (s *Store) DeleteHighlights(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		deleted = 0
		for _, id := range ids {
			h, err := getHighlight(txn, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := removeHighlight(txn, h); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func sortByRef(highlights []*domain.Highlight) {
	sort.Slice(highlights, func(i, j int) bool {
		return highlights[i].Ref().Less(highlights[j].Ref())
	})
}
