package service

import (
	"context"
	"log/slog"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/labels"
)

// Resolver decides which highlights belong to a category when it is shown.
//
// A highlight in a single-label color belongs to that label. In a color shared by
// several labels an explicit highlight label decides; otherwise the verse text is
// searched for the category name. A verse that mentions none of the color's labels
// is shown under all of them.
type Resolver struct {
	categories *CategoryService
	highlights *HighlightService
	logger     *slog.Logger
}

// NewResolver creates a new membership resolver.
func NewResolver(categories *CategoryService, highlights *HighlightService, logger *slog.Logger) *Resolver {
	return &Resolver{
		categories: categories,
		highlights: highlights,
		logger:     logger,
	}
}

// IsMember reports whether h belongs to the category name, given the label set of h's color.
// Text is looked up only for unlabeled highlights in colors with two or more labels.
func (r *Resolver) IsMember(ctx context.Context, h *domain.Highlight, name string, colorLabels []string) (bool, error) {
	if domain.IsOther(name) {
		return len(colorLabels) == 0, nil
	}
	if !labels.Contains(colorLabels, name) {
		return false, nil
	}
	if len(colorLabels) == 1 {
		return true, nil
	}
	if h.HasLabel() {
		return *h.Label == name, nil
	}

	text, err := r.textOf(ctx, h)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		r.logger.Warn("verse text unavailable, showing highlight in every label",
			"highlight_id", h.ID,
			"verse", h.Ref().String(),
		)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if labels.Mentions(text, name) {
		return true, nil
	}
	for _, other := range colorLabels {
		if labels.Mentions(text, other) {
			return false, nil
		}
	}
	return true, nil
}

func (r *Resolver) textOf(ctx context.Context, h *domain.Highlight) (string, error) {
	if h.HasText() {
		return *h.Text, nil
	}
	enriched, err := r.highlights.EnrichWithText(ctx, []*domain.Highlight{h})
	if err != nil {
		return "", err
	}
	return *enriched[0].Text, nil
}

// HighlightsForCategory returns the highlights shown under a category, ordered by verse.
func (r *Resolver) HighlightsForCategory(ctx context.Context, name string) ([]*domain.Highlight, error) {
	// 1. Colors in the category.
	colors, err := r.categories.ColorsForCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(colors) == 0 {
		return []*domain.Highlight{}, nil
	}

	// 2. Their highlights, through the display cache.
	hs, err := r.highlights.LoadColors(ctx, colors)
	if err != nil {
		return nil, err
	}

	byColor, err := r.categories.LabelsByColor(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Fetch text up front for the ambiguous ones only.
	var textless map[string]bool
	if !domain.IsOther(name) {
		textless, err = r.enrichAmbiguous(ctx, hs, byColor)
		if err != nil {
			return nil, err
		}
	}

	// 4. Filter.
	out := make([]*domain.Highlight, 0, len(hs))
	for _, h := range hs {
		if textless[h.ID] && labels.Contains(byColor[h.Color], name) {
			out = append(out, h)
			continue
		}
		member, err := r.IsMember(ctx, h, name, byColor[h.Color])
		if err != nil {
			return nil, err
		}
		if member {
			out = append(out, h)
		}
	}

	sortByRef(out)
	return out, nil
}

// enrichAmbiguous fills in text, in place, for unlabeled highlights in multi-label colors.
// The slice holds copies from LoadColors, so the service's records are untouched.
// It returns the ids whose verse the lookup does not know; those are shown fail-open.
func (r *Resolver) enrichAmbiguous(ctx context.Context, hs []*domain.Highlight, byColor map[string][]string) (map[string]bool, error) {
	textless := make(map[string]bool)
	for i, h := range hs {
		if len(byColor[h.Color]) < 2 || h.HasLabel() || h.HasText() {
			continue
		}
		enriched, err := r.highlights.EnrichWithText(ctx, []*domain.Highlight{h})
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			r.logger.Warn("verse text unavailable, showing highlight in every label",
				"highlight_id", h.ID,
				"verse", h.Ref().String(),
			)
			textless[h.ID] = true
			continue
		}
		if err != nil {
			return nil, err
		}
		hs[i] = enriched[0]
	}
	return textless, nil
}
