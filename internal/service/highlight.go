package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/id"
	"github.com/versemark/versemark-server/internal/scripture"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
	"github.com/versemark/versemark-server/internal/validation"
)

// DefaultDeleteBatchSize is the number of ids sent to the store per delete call.
const DefaultDeleteBatchSize = 100

// HighlightService holds highlight records for display, fills in verse text and deletes in bulk.
type HighlightService struct {
	store     store.Store
	lookup    scripture.Lookup
	cache     *ColorCache
	palette   *color.Palette
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
	batchSize int

	mu      sync.RWMutex
	records map[string][]*domain.Highlight // by color, display path only
}

// NewHighlightService creates a new highlight service.
// A batchSize below 1 falls back to DefaultDeleteBatchSize.
func NewHighlightService(
	st store.Store,
	lookup scripture.Lookup,
	cache *ColorCache,
	palette *color.Palette,
	events EventEmitter,
	logger *slog.Logger,
	batchSize int,
) *HighlightService {
	if batchSize < 1 {
		batchSize = DefaultDeleteBatchSize
	}
	return &HighlightService{
		store:     st,
		lookup:    lookup,
		cache:     cache,
		palette:   palette,
		validator: validation.New(),
		events:    emitterOrNoop(events),
		logger:    logger,
		batchSize: batchSize,
		records:   make(map[string][]*domain.Highlight),
	}
}

// CreateHighlightRequest is the input for CreateHighlight.
type CreateHighlightRequest struct {
	BookID  string  `json:"book_id" validate:"required,max=16"`
	Chapter int     `json:"chapter" validate:"gte=1"`
	Verse   int     `json:"verse" validate:"gte=1"`
	Version string  `json:"version" validate:"required,max=16"`
	Color   string  `json:"color" validate:"required"`
	Label   *string `json:"label,omitempty" validate:"omitempty,max=50"`
}

// UpdateHighlightRequest changes a highlight's color and/or explicit label.
// A nil field is left unchanged. An empty Label clears it.
type UpdateHighlightRequest struct {
	Color *string `json:"color,omitempty"`
	Label *string `json:"label,omitempty" validate:"omitempty,max=50"`
}

// BulkDeleteResult reports the outcome of a bulk delete.
// Committed lists the ids of batches the store accepted. Deleted is the number of rows the
// store reported removed, so ids that were already gone count in Committed but not in Deleted.
type BulkDeleteResult struct {
	Requested int      `json:"requested"`
	Deleted   int      `json:"deleted"`
	Committed []string `json:"committed"`
	Failed    []string `json:"failed"`
}

// FetchHighlightsForColors reads every highlight in the given colors straight from the store,
// bypassing the display cache.
func (s *HighlightService) FetchHighlightsForColors(ctx context.Context, colors []string) ([]*domain.Highlight, error) {
	if len(colors) == 0 {
		return []*domain.Highlight{}, nil
	}

	hs, err := s.store.ListHighlightsByColors(ctx, colors)
	if err != nil {
		return nil, domainerrors.Persistence("fetch highlights", err)
	}

	out := make([]*domain.Highlight, 0, len(hs))
	for _, h := range hs {
		if slices.Contains(colors, h.Color) {
			out = append(out, h)
		}
	}
	return out, nil
}

// LoadColors returns the highlights of the given colors for display.
// Only colors not already in the cache are fetched.
func (s *HighlightService) LoadColors(ctx context.Context, colors []string) ([]*domain.Highlight, error) {
	if missing := s.cache.missing(colors); len(missing) > 0 {
		fetched, err := s.FetchHighlightsForColors(ctx, missing)
		if err != nil {
			return nil, err
		}

		grouped := make(map[string][]*domain.Highlight, len(missing))
		for _, c := range missing {
			grouped[c] = []*domain.Highlight{}
		}
		for _, h := range fetched {
			grouped[h.Color] = append(grouped[h.Color], h)
		}

		s.mu.Lock()
		for c, hs := range grouped {
			s.records[c] = hs
		}
		s.mu.Unlock()
		s.cache.MarkLoaded(missing...)

		s.logger.Debug("highlights loaded", "colors", strings.Join(missing, ","), "count", len(fetched))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Highlight
	for _, c := range colors {
		for _, h := range s.records[c] {
			out = append(out, h.Clone())
		}
	}
	sortByRef(out)
	return out, nil
}

// EnrichWithText returns copies of the highlights with verse text filled in.
// Highlights that already carry text are copied as is. Inputs are never modified.
func (s *HighlightService) EnrichWithText(ctx context.Context, hs []*domain.Highlight) ([]*domain.Highlight, error) {
	out := make([]*domain.Highlight, 0, len(hs))
	for _, h := range hs {
		if h.HasText() {
			out = append(out, h.Clone())
			continue
		}

		text, err := s.lookup.GetVerseText(ctx, h.Ref())
		if errors.Is(err, scripture.ErrVerseNotFound) {
			return nil, domainerrors.NotFoundf("no text for %s", h.Ref()).WithCause(err)
		}
		if err != nil {
			return nil, domainerrors.Persistence(fmt.Sprintf("look up text for %s", h.Ref()), err)
		}
		out = append(out, h.WithText(text))
	}
	return out, nil
}

// BulkDelete deletes highlights in batches. Every batch is attempted even after a failure.
// When any batch fails the error is a Persistence error whose details hold the result.
func (s *HighlightService) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	result := BulkDeleteResult{
		Requested: len(ids),
		Committed: []string{},
		Failed:    []string{},
	}

	var errs []error
	for batch := range slices.Chunk(ids, s.batchSize) {
		n, err := s.store.DeleteHighlights(ctx, batch)
		if err != nil {
			result.Failed = append(result.Failed, batch...)
			errs = append(errs, err)
			s.logger.Warn("highlight delete batch failed", "size", len(batch), "error", err)
			continue
		}
		result.Deleted += n
		result.Committed = append(result.Committed, batch...)
	}

	if len(errs) > 0 {
		msg := fmt.Sprintf("deleted %d of %d highlights", result.Deleted, result.Requested)
		return result, domainerrors.Persistence(msg, errors.Join(errs...)).WithDetails(result)
	}
	return result, nil
}

// CreateHighlight marks a verse with a palette color.
func (s *HighlightService) CreateHighlight(ctx context.Context, req CreateHighlightRequest) (*domain.Highlight, error) {
	// 1. Validate input.
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	hex, err := s.paletteColor(req.Color)
	if err != nil {
		return nil, err
	}

	// 2. Build the record.
	highlightID, err := id.Highlight()
	if err != nil {
		return nil, domainerrors.Internal("generate highlight id").WithCause(err)
	}
	h := &domain.Highlight{
		VerseRef: domain.VerseRef{
			BookID:  strings.ToUpper(strings.TrimSpace(req.BookID)),
			Chapter: req.Chapter,
			Verse:   req.Verse,
			Version: strings.ToUpper(strings.TrimSpace(req.Version)),
		},
		ID:    highlightID,
		Color: hex,
		Label: normalizeLabel(req.Label),
	}
	h.Touch()
	h.CreatedAt = h.UpdatedAt

	// 3. Persist.
	if err := s.store.CreateHighlight(ctx, h); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("%s is already highlighted", h.Ref()).WithCause(err)
		}
		return nil, domainerrors.Persistence("create highlight", err)
	}

	// 4. The color's display records are stale now.
	s.cache.Invalidate(hex)

	// 5. Notify clients.
	s.events.Emit(sse.NewHighlightCreatedEvent(h.Clone()))

	s.logger.Info("highlight created",
		"highlight_id", h.ID,
		"verse", h.Ref().String(),
		"color", hex,
	)

	return h, nil
}

// GetHighlight returns one highlight.
func (s *HighlightService) GetHighlight(ctx context.Context, highlightID string) (*domain.Highlight, error) {
	h, err := s.store.GetHighlight(ctx, highlightID)
	if err != nil {
		return nil, storeError(err, "highlight %s", highlightID)
	}
	return h, nil
}

// ListHighlights returns all highlights, or those of one color when colorHex is set.
func (s *HighlightService) ListHighlights(ctx context.Context, colorHex string) ([]*domain.Highlight, error) {
	if colorHex == "" {
		hs, err := s.store.ListHighlights(ctx)
		if err != nil {
			return nil, domainerrors.Persistence("list highlights", err)
		}
		return hs, nil
	}

	hex, err := color.Normalize(colorHex)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	return s.FetchHighlightsForColors(ctx, []string{hex})
}

// UpdateHighlight changes a highlight's color or explicit label.
func (s *HighlightService) UpdateHighlight(ctx context.Context, highlightID string, req UpdateHighlightRequest) (*domain.Highlight, error) {
	// 1. Validate input.
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// 2. Load the current record.
	h, err := s.GetHighlight(ctx, highlightID)
	if err != nil {
		return nil, err
	}
	oldColor := h.Color

	// 3. Apply changes.
	if req.Color != nil {
		hex, err := s.paletteColor(*req.Color)
		if err != nil {
			return nil, err
		}
		h.Color = hex
	}
	if req.Label != nil {
		h.Label = normalizeLabel(req.Label)
	}
	h.Touch()

	// 4. Persist.
	if err := s.store.UpdateHighlight(ctx, h); err != nil {
		return nil, storeError(err, "update highlight %s", highlightID)
	}

	// 5. Both colors' display records are stale.
	s.cache.Invalidate(oldColor, h.Color)

	s.events.Emit(sse.NewHighlightUpdatedEvent(h.Clone()))

	s.logger.Info("highlight updated",
		"highlight_id", h.ID,
		"old_color", oldColor,
		"color", h.Color,
	)

	return h, nil
}

// DeleteHighlight removes one highlight.
func (s *HighlightService) DeleteHighlight(ctx context.Context, highlightID string) error {
	h, err := s.GetHighlight(ctx, highlightID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteHighlight(ctx, highlightID); err != nil {
		return storeError(err, "delete highlight %s", highlightID)
	}

	s.cache.Invalidate(h.Color)
	s.events.Emit(sse.NewHighlightDeletedEvent(h.ID, h.Color))

	s.logger.Info("highlight deleted", "highlight_id", h.ID, "color", h.Color)
	return nil
}

func (s *HighlightService) paletteColor(colorHex string) (string, error) {
	hex, err := color.Normalize(colorHex)
	if err != nil {
		return "", domainerrors.Validation(err.Error())
	}
	if !s.palette.Contains(hex) {
		return "", domainerrors.NotFoundf("color %s is not in the palette", hex)
	}
	return hex, nil
}

// normalizeLabel trims and NFC-normalizes an explicit label so it compares equal to
// category names produced by the label codec. Blank labels are stored as unset.
func normalizeLabel(label *string) *string {
	if label == nil {
		return nil
	}
	trimmed := norm.NFC.String(strings.TrimSpace(*label))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sortByRef(hs []*domain.Highlight) {
	slices.SortStableFunc(hs, func(a, b *domain.Highlight) int {
		switch {
		case a.Ref().Less(b.Ref()):
			return -1
		case b.Ref().Less(a.Ref()):
			return 1
		default:
			return 0
		}
	})
}
