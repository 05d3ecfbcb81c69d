package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/labels"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
	"github.com/versemark/versemark-server/internal/validation"
)

// CategoryService owns color to label assignments and derives the category list from them.
// Rows are read through an in-memory copy that is only updated after the store accepts a write.
type CategoryService struct {
	store     store.Store
	palette   *color.Palette
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger

	mu   sync.RWMutex
	rows map[string]*domain.CategoryAssignment // nil until loaded
}

// NewCategoryService creates a new category service.
func NewCategoryService(st store.Store, palette *color.Palette, events EventEmitter, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:     st,
		palette:   palette,
		validator: validation.New(),
		events:    emitterOrNoop(events),
		logger:    logger,
	}
}

// snapshot returns the assignment rows keyed by color, loading them on first use.
// The returned map and rows belong to the caller.
func (s *CategoryService) snapshot(ctx context.Context) (map[string]*domain.CategoryAssignment, error) {
	s.mu.RLock()
	if s.rows != nil {
		out := cloneRows(s.rows)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	list, err := s.store.ListAssignments(ctx)
	if err != nil {
		return nil, domainerrors.Persistence("list category assignments", err)
	}

	rows := make(map[string]*domain.CategoryAssignment, len(list))
	for _, a := range list {
		rows[a.Color] = a
	}

	s.mu.Lock()
	if s.rows == nil {
		s.rows = rows
	}
	out := cloneRows(s.rows)
	s.mu.Unlock()

	return out, nil
}

func cloneRows(rows map[string]*domain.CategoryAssignment) map[string]*domain.CategoryAssignment {
	out := make(map[string]*domain.CategoryAssignment, len(rows))
	for k, v := range rows {
		out[k] = v.Clone()
	}
	return out
}

// remember applies a committed write to the cached rows. A nil assignment removes the color.
func (s *CategoryService) remember(colorHex string, a *domain.CategoryAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rows == nil {
		return
	}
	if a == nil {
		delete(s.rows, colorHex)
		return
	}
	s.rows[colorHex] = a.Clone()
}

// Refresh drops the cached rows so the next read reloads them from the store.
func (s *CategoryService) Refresh() {
	s.mu.Lock()
	s.rows = nil
	s.mu.Unlock()
}

// LabelsByColor returns the label set of every assigned color.
func (s *CategoryService) LabelsByColor(ctx context.Context) (map[string][]string, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(rows))
	for c, a := range rows {
		out[c] = a.Labels
	}
	return out, nil
}

// ListCategories returns every distinct label in collation order, followed by OTHER
// when some highlighted color has no labels.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.CountHighlightsByColor(ctx)
	if err != nil {
		return nil, domainerrors.Persistence("count highlights by color", err)
	}

	byName := make(map[string][]string)
	for c, a := range rows {
		for _, name := range a.Labels {
			byName[name] = append(byName[name], c)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	labels.Sort(names)

	categories := make([]domain.Category, 0, len(names)+1)
	for _, name := range names {
		colors := byName[name]
		slices.Sort(colors)
		categories = append(categories, domain.Category{Name: name, Colors: colors})
	}

	hasOther := false
	for c, n := range counts {
		if n > 0 && rows[c].IsEmpty() {
			hasOther = true
			break
		}
	}
	if hasOther {
		categories = append(categories, domain.Category{
			Name:      domain.OtherCategory,
			Synthetic: true,
			Colors:    s.unassignedColors(rows, counts),
		})
	}

	return categories, nil
}

// ColorsForCategory returns the colors that make up a category, sorted by hex.
// OTHER covers palette colors and highlighted colors that have no labels.
// An unknown name yields an empty slice.
func (s *CategoryService) ColorsForCategory(ctx context.Context, name string) ([]string, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if domain.IsOther(name) {
		counts, err := s.store.CountHighlightsByColor(ctx)
		if err != nil {
			return nil, domainerrors.Persistence("count highlights by color", err)
		}
		return s.unassignedColors(rows, counts), nil
	}

	colors := []string{}
	for c, a := range rows {
		if a.HasLabel(name) {
			colors = append(colors, c)
		}
	}
	slices.Sort(colors)
	return colors, nil
}

func (s *CategoryService) unassignedColors(rows map[string]*domain.CategoryAssignment, counts map[string]int) []string {
	seen := make(map[string]struct{})
	colors := []string{}
	add := func(c string) {
		if _, ok := seen[c]; ok || !rows[c].IsEmpty() {
			return
		}
		seen[c] = struct{}{}
		colors = append(colors, c)
	}

	for _, c := range s.palette.Hexes() {
		add(c)
	}
	for c, n := range counts {
		if n > 0 {
			add(c)
		}
	}
	slices.Sort(colors)
	return colors
}

// GetAssignment returns the assignment of one color.
func (s *CategoryService) GetAssignment(ctx context.Context, colorHex string) (*domain.CategoryAssignment, error) {
	hex, err := s.paletteColor(colorHex)
	if err != nil {
		return nil, err
	}

	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	a, ok := rows[hex]
	if !ok {
		return nil, domainerrors.NotFoundf("color %s has no category assignment", hex)
	}
	return a, nil
}

// ListAssignments returns every stored assignment ordered by color.
func (s *CategoryService) ListAssignments(ctx context.Context) ([]*domain.CategoryAssignment, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.CategoryAssignment, 0, len(rows))
	for _, a := range rows {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *domain.CategoryAssignment) int {
		return strings.Compare(a.Color, b.Color)
	})
	return out, nil
}

// SetLabel names a palette color with free label text such as "Faith, Hope".
func (s *CategoryService) SetLabel(ctx context.Context, colorHex, raw string) (*domain.CategoryAssignment, error) {
	// 1. Resolve the color against the palette.
	hex, err := s.paletteColor(colorHex)
	if err != nil {
		return nil, err
	}

	// 2. Split and validate the label text.
	names, err := s.parseLabels(raw)
	if err != nil {
		return nil, err
	}

	// 3. Persist. The cached rows only change once the store has accepted the write.
	a := &domain.CategoryAssignment{Color: hex, Labels: names, UpdatedAt: time.Now()}
	if err := s.store.UpsertAssignment(ctx, a); err != nil {
		return nil, domainerrors.Persistence("save category assignment", err)
	}
	s.remember(hex, a)

	// 4. Notify clients.
	s.events.Emit(sse.NewAssignmentUpdatedEvent(a.Clone()))

	s.logger.Info("category assignment saved",
		"color", hex,
		"labels", labels.Join(names),
	)

	return a, nil
}

// DeleteAssignment removes a color's assignment row, returning the color to OTHER.
func (s *CategoryService) DeleteAssignment(ctx context.Context, colorHex string) error {
	if domain.IsOther(colorHex) {
		return domainerrors.Validationf("%s is a category, not a color", domain.OtherCategory)
	}

	hex, err := color.Normalize(colorHex)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}

	if err := s.store.DeleteAssignment(ctx, hex); err != nil {
		return storeError(err, "delete assignment for %s", hex)
	}
	s.remember(hex, nil)

	s.events.Emit(sse.NewAssignmentDeletedEvent(hex))
	s.logger.Info("category assignment deleted", "color", hex)

	return nil
}

// RemoveLabel drops one label from a color. The row is deleted when no labels remain,
// in which case removedRow is true. A color that does not carry the label is left alone.
func (s *CategoryService) RemoveLabel(ctx context.Context, colorHex, name string) (removedRow bool, err error) {
	hex, err := color.Normalize(colorHex)
	if err != nil {
		return false, domainerrors.Validation(err.Error())
	}

	rows, err := s.snapshot(ctx)
	if err != nil {
		return false, err
	}

	a, ok := rows[hex]
	if !ok || !a.HasLabel(name) {
		return false, nil
	}

	remaining := labels.Without(a.Labels, name)
	if len(remaining) == 0 {
		if err := s.store.DeleteAssignment(ctx, hex); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, domainerrors.Persistence("delete category assignment", err)
		}
		s.remember(hex, nil)
		s.events.Emit(sse.NewAssignmentDeletedEvent(hex))
		s.logger.Info("category assignment removed", "color", hex, "label", name)
		return true, nil
	}

	a.Labels = remaining
	a.Touch()
	if err := s.store.UpsertAssignment(ctx, a); err != nil {
		return false, domainerrors.Persistence("save category assignment", err)
	}
	s.remember(hex, a)
	s.events.Emit(sse.NewAssignmentUpdatedEvent(a.Clone()))
	s.logger.Info("label removed from color",
		"color", hex,
		"label", name,
		"remaining", labels.Join(remaining),
	)

	return false, nil
}

// ImportLegacy stores delimited label text exactly as split, one row per color.
// Unlike SetLabel it accepts text that splits to nothing; such a row counts as unassigned.
func (s *CategoryService) ImportLegacy(ctx context.Context, rows map[string]string) (int, error) {
	colors := make([]string, 0, len(rows))
	for c := range rows {
		colors = append(colors, c)
	}
	slices.Sort(colors)

	imported := 0
	for _, c := range colors {
		hex, err := s.paletteColor(c)
		if err != nil {
			return imported, err
		}

		names := labels.Parse(rows[c])
		for _, name := range names {
			if err := s.checkLabel(name); err != nil {
				return imported, err
			}
		}

		a := &domain.CategoryAssignment{Color: hex, Labels: names, UpdatedAt: time.Now()}
		if err := s.store.UpsertAssignment(ctx, a); err != nil {
			return imported, domainerrors.Persistence("import category assignment", err)
		}
		s.remember(hex, a)
		s.events.Emit(sse.NewAssignmentUpdatedEvent(a.Clone()))
		imported++
	}

	s.logger.Info("legacy category assignments imported", "count", imported)
	return imported, nil
}

// Palette returns the configured highlight colors.
func (s *CategoryService) Palette() []domain.HighlightColor {
	return s.palette.Colors()
}

// paletteColor normalizes a hex value and checks it against the palette.
func (s *CategoryService) paletteColor(colorHex string) (string, error) {
	hex, err := color.Normalize(colorHex)
	if err != nil {
		return "", domainerrors.Validation(err.Error())
	}
	if !s.palette.Contains(hex) {
		return "", domainerrors.NotFoundf("color %s is not in the palette", hex)
	}
	return hex, nil
}

func (s *CategoryService) parseLabels(raw string) ([]string, error) {
	names := labels.Parse(raw)
	if len(names) == 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"label": "must contain at least one category name",
		})
	}
	for _, name := range names {
		if err := s.checkLabel(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (s *CategoryService) checkLabel(name string) error {
	if domain.IsOther(name) {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"label": domain.OtherCategory + " is reserved",
		})
	}
	return s.validator.Var("label", name, "max="+strconv.Itoa(labels.MaxLabelLength))
}
