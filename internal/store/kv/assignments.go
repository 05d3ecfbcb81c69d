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

func decodeAssignment(val []byte) (*domain.CategoryAssignment, error) {
	var a domain.CategoryAssignment
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, store.InvalidInput("assignment", err)
	}
	if a.Labels == nil {
		a.Labels = []string{}
	}
	return &a, nil
}

// GetAssignment returns the assignment for color, or store.ErrNotFound.
func (s *Store) GetAssignment(ctx context.Context, color string) (*domain.CategoryAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a *domain.CategoryAssignment
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(assignmentKey(color))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NotFound("assignment", color)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			a, err = decodeAssignment(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssignments returns every assignment ordered by color.
func (s *Store) ListAssignments(ctx context.Context) ([]*domain.CategoryAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assignments := []*domain.CategoryAssignment{}
	err := s.db.View(func(txn *badger.Txn) error {
		return iterateValues(txn, []byte(assignmentPrefix), func(val []byte) error {
			a, err := decodeAssignment(val)
			if err != nil {
				return err
			}
			assignments = append(assignments, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Color < assignments[j].Color
	})
	return assignments, nil
}

// UpsertAssignment writes the row for a.Color.
func (s *Store) UpsertAssignment(ctx context.Context, a *domain.CategoryAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := *a
	if row.Labels == nil {
		row.Labels = []string{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return store.InvalidInput("assignment", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(assignmentKey(a.Color), data)
	})
}

// DeleteAssignment removes the row for color, or returns store.ErrNotFound.
func (s *Store) DeleteAssignment(ctx context.Context, color string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := assignmentKey(color)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return store.NotFound("assignment", color)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
