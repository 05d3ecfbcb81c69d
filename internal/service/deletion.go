package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/labels"
	"github.com/versemark/versemark-server/internal/metrics"
	"github.com/versemark/versemark-server/internal/sse"
)

// DeletionState is the phase of the category deletion in progress.
type DeletionState int32

const (
	StateIdle DeletionState = iota
	StateResolving
	StateDeleting
)

func (s DeletionState) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// DeleteReport is the outcome of one category deletion.
type DeleteReport struct {
	OperationID        string        `json:"operation_id"`
	Category           string        `json:"category"`
	Colors             []string      `json:"colors"`
	Candidates         int           `json:"candidates"`
	Requested          int           `json:"requested"`
	Deleted            int           `json:"deleted"`
	Failed             []string      `json:"failed"`
	Protected          int           `json:"protected"`
	AssignmentsRemoved int           `json:"assignments_removed"`
	AssignmentsUpdated int           `json:"assignments_updated"`
	Duration           time.Duration `json:"duration_ns"`
}

// DeletionService deletes every highlight in a category without touching highlights
// that a sibling category on the same color also claims.
// Only one deletion runs at a time, process wide.
type DeletionService struct {
	categories *CategoryService
	highlights *HighlightService
	cache      *ColorCache
	events     EventEmitter
	logger     *slog.Logger

	running atomic.Bool
	state   atomic.Int32
}

// NewDeletionService creates a new deletion service.
func NewDeletionService(
	categories *CategoryService,
	highlights *HighlightService,
	cache *ColorCache,
	events EventEmitter,
	logger *slog.Logger,
) *DeletionService {
	return &DeletionService{
		categories: categories,
		highlights: highlights,
		cache:      cache,
		events:     emitterOrNoop(events),
		logger:     logger,
	}
}

// State returns the current phase.
func (s *DeletionService) State() DeletionState {
	return DeletionState(s.state.Load())
}

func (s *DeletionService) setState(st DeletionState) {
	s.state.Store(int32(st))
}

// DeleteCategory deletes the highlights of a category and strips the label from its colors.
//
// Highlights in colors shared with other labels are deleted only when their explicit label
// is this category, or when their verse text mentions this category and no sibling.
// The work is detached from ctx cancellation once started.
// If the bulk delete partly fails the report is returned alongside a Persistence error.
func (s *DeletionService) DeleteCategory(ctx context.Context, name string) (*DeleteReport, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return nil, domainerrors.Validation("category name is required")
	}

	if !s.running.CompareAndSwap(false, true) {
		metrics.RecordDeletion(metrics.ResultConflict, 0, 0, 0)
		return nil, domainerrors.Conflict("a category deletion is already in progress")
	}
	defer func() {
		s.setState(StateIdle)
		s.running.Store(false)
	}()

	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	report := &DeleteReport{
		OperationID: uuid.NewString(),
		Category:    name,
		Colors:      []string{},
		Failed:      []string{},
	}
	logger := s.logger.With("operation_id", report.OperationID, "category", name)

	report, err := s.run(ctx, name, report, logger)
	report.Duration = time.Since(start)

	result := metrics.ResultSuccess
	switch {
	case err != nil && report.Deleted > 0:
		result = metrics.ResultPartial
	case err != nil:
		result = metrics.ResultFailure
	case len(report.Colors) == 0:
		result = metrics.ResultNoop
	}
	metrics.RecordDeletion(result, report.Deleted, report.Protected, report.Duration)

	if err != nil {
		logger.Error("category deletion failed",
			"deleted", report.Deleted,
			"requested", report.Requested,
			"error", err,
		)
		return report, err
	}

	logger.Info("category deleted",
		"colors", len(report.Colors),
		"deleted", report.Deleted,
		"protected", report.Protected,
		"assignments_removed", report.AssignmentsRemoved,
		"assignments_updated", report.AssignmentsUpdated,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *DeletionService) run(ctx context.Context, name string, report *DeleteReport, logger *slog.Logger) (*DeleteReport, error) {
	s.setState(StateResolving)

	// 1. Colors in the category.
	colors, err := s.categories.ColorsForCategory(ctx, name)
	if err != nil {
		return report, err
	}
	if len(colors) == 0 {
		return report, nil
	}
	report.Colors = colors

	byColor, err := s.categories.LabelsByColor(ctx)
	if err != nil {
		return report, err
	}

	// 2. Candidates, always straight from the store.
	candidates, err := s.highlights.FetchHighlightsForColors(ctx, colors)
	if err != nil {
		return report, err
	}
	report.Candidates = len(candidates)

	// 3. Partition into highlights that need their text checked and the rest.
	// On a color with one label or none every highlight goes, whatever its explicit label,
	// matching what the category shows.
	var straight, needsCheck []*domain.Highlight
	for _, h := range candidates {
		colorLabels := byColor[h.Color]
		switch {
		case len(colorLabels) < 2, domain.IsOther(name):
			straight = append(straight, h)
		case !h.HasLabel():
			needsCheck = append(needsCheck, h)
		case *h.Label == name:
			straight = append(straight, h)
		}
	}

	// 4. Verify the ambiguous ones against their text.
	verified, err := s.verify(ctx, needsCheck, name, byColor, report, logger)
	if err != nil {
		return report, err
	}

	// 5. Collect ids.
	seen := make(map[string]struct{}, len(straight)+len(verified))
	ids := make([]string, 0, len(straight)+len(verified))
	for _, h := range append(straight, verified...) {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		ids = append(ids, h.ID)
	}

	// 6. Delete.
	s.setState(StateDeleting)
	if len(ids) > 0 {
		report.Requested = len(ids)
		result, err := s.highlights.BulkDelete(ctx, ids)
		report.Deleted = result.Deleted
		report.Failed = result.Failed
		if err != nil {
			s.cache.Invalidate(colors...)
			s.categories.Refresh()
			s.emit(report)
			msg := fmt.Sprintf("category %q: deleted %d of %d highlights", name, report.Deleted, report.Requested)
			return report, domainerrors.Persistence(msg, err).WithDetails(report)
		}
	}

	// 7. Strip the label from its colors. OTHER has no rows to clean up.
	if !domain.IsOther(name) {
		for _, c := range colors {
			removed, err := s.categories.RemoveLabel(ctx, c, name)
			if err != nil {
				s.cache.Invalidate(colors...)
				s.categories.Refresh()
				s.emit(report)
				return report, err
			}
			if removed {
				report.AssignmentsRemoved++
			} else {
				report.AssignmentsUpdated++
			}
		}
	}

	// 8. Display records for these colors are stale.
	s.cache.Invalidate(colors...)
	s.emit(report)

	return report, nil
}

// verify returns the ambiguous highlights whose text mentions name and none of its siblings.
// A verse the lookup does not know is kept.
func (s *DeletionService) verify(
	ctx context.Context,
	hs []*domain.Highlight,
	name string,
	byColor map[string][]string,
	report *DeleteReport,
	logger *slog.Logger,
) ([]*domain.Highlight, error) {
	var verified []*domain.Highlight
	for _, h := range hs {
		enriched, err := s.highlights.EnrichWithText(ctx, []*domain.Highlight{h})
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn("verse text unavailable, keeping highlight",
				"highlight_id", h.ID,
				"verse", h.Ref().String(),
			)
			report.Protected++
			continue
		}
		if err != nil {
			return nil, err
		}

		text := *enriched[0].Text
		if labels.Mentions(text, name) && !mentionsAny(text, labels.Without(byColor[h.Color], name)) {
			verified = append(verified, h)
			continue
		}

		logger.Debug("highlight kept for sibling category",
			"highlight_id", h.ID,
			"color", h.Color,
		)
		report.Protected++
	}
	return verified, nil
}

func (s *DeletionService) emit(report *DeleteReport) {
	s.events.Emit(sse.NewCategoryDeletedEvent(sse.CategoryDeletedEventData{
		OperationID: report.OperationID,
		Category:    report.Category,
		Colors:      report.Colors,
		Deleted:     report.Deleted,
		Protected:   report.Protected,
		Failed:      len(report.Failed),
	}))
}

func mentionsAny(text string, names []string) bool {
	for _, n := range names {
		if labels.Mentions(text, n) {
			return true
		}
	}
	return false
}
