package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// highlightColumns must match the scan order in scanHighlight.
const highlightColumns = `id, book_id, chapter, verse, version, color, label, created_at, updated_at`

// scanHighlight scans a row into a domain.Highlight. Text is never stored and stays nil.
func scanHighlight(scanner interface{ Scan(dest ...any) error }) (*domain.Highlight, error) {
	var (
		h         domain.Highlight
		label     sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&h.ID,
		&h.BookID,
		&h.Chapter,
		&h.Verse,
		&h.Version,
		&h.Color,
		&label,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if label.Valid {
		h.Label = &label.String
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &h, nil
}

func collectHighlights(rows *sql.Rows) ([]*domain.Highlight, error) {
	defer rows.Close()

	highlights := []*domain.Highlight{}
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		highlights = append(highlights, h)
	}
	return highlights, rows.Err()
}

// CreateHighlight inserts a new highlight.
// Returns store.ErrAlreadyExists on a duplicate id or verse reference.
func (s *Store) CreateHighlight(ctx context.Context, h *domain.Highlight) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO highlights (`+highlightColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.BookID,
		h.Chapter,
		h.Verse,
		h.Version,
		h.Color,
		nullableString(h.Label),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.AlreadyExists("highlight", h.VerseRef.String())
	}
	return err
}

// GetHighlight retrieves a highlight by id.
func (s *Store) GetHighlight(ctx context.Context, id string) (*domain.Highlight, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+highlightColumns+` FROM highlights WHERE id = ?`, id)

	h, err := scanHighlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("highlight", id)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// UpdateHighlight rewrites the mutable fields of an existing highlight.
func (s *Store) UpdateHighlight(ctx context.Context, h *domain.Highlight) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE highlights
		SET book_id = ?, chapter = ?, verse = ?, version = ?, color = ?, label = ?, updated_at = ?
		WHERE id = ?`,
		h.BookID,
		h.Chapter,
		h.Verse,
		h.Version,
		h.Color,
		nullableString(h.Label),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if isUniqueViolation(err) {
		return store.AlreadyExists("highlight", h.VerseRef.String())
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NotFound("highlight", h.ID)
	}
	return nil
}

// DeleteHighlight removes one highlight by id.
func (s *Store) DeleteHighlight(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.NotFound("highlight", id)
	}
	return nil
}

// ListHighlights returns every highlight in verse order.
func (s *Store) ListHighlights(ctx context.Context) ([]*domain.Highlight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+highlightColumns+` FROM highlights
		ORDER BY book_id, chapter, verse, version`)
	if err != nil {
		return nil, err
	}
	return collectHighlights(rows)
}

// ListHighlightsByColors returns highlights whose color is one of colors.
func (s *Store) ListHighlightsByColors(ctx context.Context, colors []string) ([]*domain.Highlight, error) {
	if len(colors) == 0 {
		return []*domain.Highlight{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+highlightColumns+` FROM highlights
		WHERE color IN (`+placeholders(len(colors))+`)
		ORDER BY book_id, chapter, verse, version`,
		stringArgs(colors)...)
	if err != nil {
		return nil, err
	}
	return collectHighlights(rows)
}

// CountHighlightsByColor returns the number of highlights per color. Colors with none are absent.
func (s *Store) CountHighlightsByColor(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT color, COUNT(*) FROM highlights GROUP BY color`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			color string
			n     int
		)
		if err := rows.Scan(&color, &n); err != nil {
			return nil, err
		}
		counts[color] = n
	}
	return counts, rows.Err()
}

// DeleteHighlights deletes a batch of ids in one transaction.
func (s *Store) DeleteHighlights(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`DELETE FROM highlights WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}
