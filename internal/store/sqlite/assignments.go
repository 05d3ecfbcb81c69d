package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// assignmentColumns must match the scan order in scanAssignment.
const assignmentColumns = `color, labels, updated_at`

func scanAssignment(scanner interface{ Scan(dest ...any) error }) (*domain.CategoryAssignment, error) {
	var (
		a         domain.CategoryAssignment
		rawLabels string
		updatedAt string
	)

	if err := scanner.Scan(&a.Color, &rawLabels, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rawLabels), &a.Labels); err != nil {
		return nil, store.InvalidInput("assignment", err)
	}
	if a.Labels == nil {
		a.Labels = []string{}
	}

	var err error
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

// GetAssignment returns the assignment for color, or store.ErrNotFound.
func (s *Store) GetAssignment(ctx context.Context, color string) (*domain.CategoryAssignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM category_assignments WHERE color = ?`, color)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("assignment", color)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssignments returns every assignment ordered by color.
func (s *Store) ListAssignments(ctx context.Context) ([]*domain.CategoryAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM category_assignments ORDER BY color ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []*domain.CategoryAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// UpsertAssignment inserts or replaces the row for a.Color.
func (s *Store) UpsertAssignment(ctx context.Context, a *domain.CategoryAssignment) error {
	labels := a.Labels
	if labels == nil {
		labels = []string{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return store.InvalidInput("assignment", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO category_assignments (color, labels, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (color) DO UPDATE SET
			labels = excluded.labels,
			updated_at = excluded.updated_at`,
		a.Color,
		string(encoded),
		formatTime(a.UpdatedAt),
	)
	return err
}

// DeleteAssignment removes the row for color, or returns store.ErrNotFound.
func (s *Store) DeleteAssignment(ctx context.Context, color string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_assignments WHERE color = ?`, color)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NotFound("assignment", color)
	}
	return nil
}
