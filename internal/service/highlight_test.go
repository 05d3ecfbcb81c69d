package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/sse"
)

func ptr[T any](v T) *T { return &v }

func TestCreateHighlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h, err := env.highlights.CreateHighlight(ctx, CreateHighlightRequest{
		BookID:  "jhn",
		Chapter: 3,
		Verse:   16,
		Version: "kjv",
		Color:   "ffeb3b",
		Label:   ptr("  Love "),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^hl-`, h.ID)
	assert.Equal(t, domain.VerseRef{BookID: "JHN", Chapter: 3, Verse: 16, Version: "KJV"}, h.Ref())
	assert.Equal(t, yellow, h.Color)
	require.NotNil(t, h.Label)
	assert.Equal(t, "Love", *h.Label)
	assert.Nil(t, h.Text)

	got, err := env.highlights.GetHighlight(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)

	assert.Equal(t, []sse.EventType{sse.EventHighlightCreated}, env.events.types())
}

func TestCreateHighlight_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valid := CreateHighlightRequest{BookID: "GEN", Chapter: 1, Verse: 1, Version: "KJV", Color: red}
	_, err := env.highlights.CreateHighlight(ctx, valid)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateHighlightRequest
		want error
	}{
		{"same verse", CreateHighlightRequest{BookID: "GEN", Chapter: 1, Verse: 1, Version: "KJV", Color: blue}, domainerrors.ErrAlreadyExists},
		{"missing book", CreateHighlightRequest{Chapter: 1, Verse: 2, Version: "KJV", Color: red}, domainerrors.ErrValidation},
		{"zero verse", CreateHighlightRequest{BookID: "GEN", Chapter: 1, Version: "KJV", Color: red}, domainerrors.ErrValidation},
		{"off palette", CreateHighlightRequest{BookID: "GEN", Chapter: 1, Verse: 3, Version: "KJV", Color: "#123456"}, domainerrors.ErrNotFound},
		{"bad hex", CreateHighlightRequest{BookID: "GEN", Chapter: 1, Verse: 4, Version: "KJV", Color: "red"}, domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.highlights.CreateHighlight(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetHighlight_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.highlights.GetHighlight(context.Background(), "hl-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateHighlight_MovesColorAndClearsLabel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 1, "", "Joy")

	_, err := env.highlights.LoadColors(ctx, []string{red, blue})
	require.NoError(t, err)

	h, err := env.highlights.UpdateHighlight(ctx, "hl-1", UpdateHighlightRequest{Color: ptr("#00f"), Label: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, blue, h.Color)
	assert.Nil(t, h.Label)

	assert.False(t, env.cache.Has(red))
	assert.False(t, env.cache.Has(blue))

	hs, err := env.highlights.LoadColors(ctx, []string{blue})
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-1"}, highlightIDs(hs))
}

func TestDeleteHighlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 1, "")

	require.NoError(t, env.highlights.DeleteHighlight(ctx, "hl-1"))
	assert.Empty(t, env.remainingIDs(t))

	err := env.highlights.DeleteHighlight(ctx, "hl-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListHighlights_ByColor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 1, "")
	env.highlight(t, "hl-2", blue, 2, "")

	all, err := env.highlights.ListHighlights(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	reds, err := env.highlights.ListHighlights(ctx, "f00")
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-1"}, highlightIDs(reds))
}

func TestLoadColors_FetchesEachColorOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 2, "")
	env.highlight(t, "hl-2", red, 1, "")
	env.highlight(t, "hl-3", blue, 3, "")

	hs, err := env.highlights.LoadColors(ctx, []string{red})
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-2", "hl-1"}, highlightIDs(hs), "ordered by verse")
	assert.Equal(t, 1, env.store.listCalls())

	_, err = env.highlights.LoadColors(ctx, []string{red})
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.listCalls())

	hs, err = env.highlights.LoadColors(ctx, []string{red, blue})
	require.NoError(t, err)
	assert.Len(t, hs, 3)
	assert.Equal(t, 2, env.store.listCalls())
	assert.True(t, env.cache.Has(red, blue))

	env.cache.Invalidate(red)
	_, err = env.highlights.LoadColors(ctx, []string{red, blue})
	require.NoError(t, err)
	assert.Equal(t, 3, env.store.listCalls())
}

func TestLoadColors_StoreFailure(t *testing.T) {
	env := newTestEnv(t)

	env.store.listByColorsErr = errors.New("connection reset")
	_, err := env.highlights.LoadColors(context.Background(), []string{red})
	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
	assert.False(t, env.cache.Has(red))
}

func TestLoadColors_ReturnsCopies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 1, "")

	hs, err := env.highlights.LoadColors(ctx, []string{red})
	require.NoError(t, err)
	hs[0].Text = ptr("scribbled")

	hs, err = env.highlights.LoadColors(ctx, []string{red})
	require.NoError(t, err)
	assert.Nil(t, hs[0].Text)
}

func TestEnrichWithText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h := env.highlight(t, "hl-1", red, 16, "For God so loved the world")
	withText := env.highlight(t, "hl-2", red, 17, "unused").WithText("already here")

	out, err := env.highlights.EnrichWithText(ctx, []*domain.Highlight{h, withText})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "For God so loved the world", *out[0].Text)
	assert.Equal(t, "already here", *out[1].Text)
	assert.Nil(t, h.Text, "input is not modified")
	assert.Equal(t, 1, env.lookup.callCount())
}

func TestEnrichWithText_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h := env.highlight(t, "hl-1", red, 1, "")
	_, err := env.highlights.EnrichWithText(ctx, []*domain.Highlight{h})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	env.lookup.err = errors.New("timeout")
	_, err = env.highlights.EnrichWithText(ctx, []*domain.Highlight{h})
	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
}

func TestBulkDelete(t *testing.T) {
	env := newTestEnvWithBatch(t, 2)
	ctx := context.Background()

	for i, hlID := range []string{"hl-1", "hl-2", "hl-3"} {
		env.highlight(t, hlID, red, i+1, "")
	}

	result, err := env.highlights.BulkDelete(ctx, []string{"hl-1", "hl-2", "hl-3"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 3, result.Deleted)
	assert.Equal(t, []string{"hl-1", "hl-2", "hl-3"}, result.Committed)
	assert.Empty(t, result.Failed)
	assert.Empty(t, env.remainingIDs(t))
}

func TestBulkDelete_CountsOnlyRowsTheStoreRemoved(t *testing.T) {
	env := newTestEnvWithBatch(t, 2)
	ctx := context.Background()

	env.highlight(t, "hl-1", red, 1, "")
	env.highlight(t, "hl-2", red, 2, "")

	result, err := env.highlights.BulkDelete(ctx, []string{"hl-1", "hl-gone", "hl-2"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, []string{"hl-1", "hl-gone", "hl-2"}, result.Committed)
	assert.Empty(t, result.Failed)
}

func TestBulkDelete_PartialFailureContinues(t *testing.T) {
	env := newTestEnvWithBatch(t, 2)
	ctx := context.Background()

	ids := []string{"hl-1", "hl-2", "hl-3", "hl-4", "hl-5"}
	for i, hlID := range ids {
		env.highlight(t, hlID, red, i+1, "")
	}

	env.store.deleteBatchErr = func(batch []string) error {
		if batch[0] == "hl-3" {
			return errors.New("database is locked")
		}
		return nil
	}

	result, err := env.highlights.BulkDelete(ctx, ids)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
	assert.Contains(t, err.Error(), "deleted 3 of 5 highlights")

	assert.Equal(t, 3, result.Deleted)
	assert.Equal(t, []string{"hl-1", "hl-2", "hl-5"}, result.Committed)
	assert.Equal(t, []string{"hl-3", "hl-4"}, result.Failed)
	assert.ElementsMatch(t, []string{"hl-3", "hl-4"}, env.remainingIDs(t))

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, result, domainErr.Details)
}
