package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/store/storetest"
)

func TestIsMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plain := storetest.MakeHighlight("hl-1", blue, 1).WithText("Rejoice in hope")
	tagged := storetest.MakeHighlight("hl-2", blue, 2).WithText("Rejoice in hope")
	tagged.Label = ptr("Faith")
	neither := storetest.MakeHighlight("hl-3", blue, 3).WithText("In the beginning")

	shared := []string{"Faith", "Hope"}

	tests := []struct {
		name   string
		hl     *domain.Highlight
		cat    string
		labels []string
		want   bool
	}{
		{"other with no labels", plain, "OTHER", nil, true},
		{"other with labels", plain, "OTHER", []string{"Joy"}, false},
		{"single label match", plain, "Joy", []string{"Joy"}, true},
		{"single label other name", plain, "Peace", []string{"Joy"}, false},
		{"name not on color", plain, "Joy", shared, false},
		{"text mentions name", plain, "Hope", shared, true},
		{"text mentions sibling only", plain, "Faith", shared, false},
		{"explicit label wins over text", tagged, "Faith", shared, true},
		{"explicit label excludes sibling", tagged, "Hope", shared, false},
		{"text mentions none is fail-open", neither, "Faith", shared, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.resolver.IsMember(ctx, tt.hl, tt.cat, tt.labels)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 0, env.lookup.callCount(), "all highlights already carried text")
}

func TestIsMember_SingleLabelNeedsNoText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h := env.highlight(t, "hl-1", red, 1, "Rejoice always")

	member, err := env.resolver.IsMember(ctx, h, "Joy", []string{"Joy"})
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 0, env.lookup.callCount())
}

func TestIsMember_LooksUpMissingText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	h := env.highlight(t, "hl-1", blue, 1, "Now faith is the substance of things hoped for")

	member, err := env.resolver.IsMember(ctx, h, "Faith", []string{"Faith", "Love"})
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 1, env.lookup.callCount())
	assert.Nil(t, h.Text, "caller's highlight is not modified")

	env.lookup.err = errors.New("timeout")
	_, err = env.resolver.IsMember(ctx, h, "Faith", []string{"Faith", "Love"})
	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
}

func TestHighlightsForCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.label(t, red, "Joy")
	env.label(t, blue, "Joy, Peace")
	env.emptyRow(t, green)

	env.highlight(t, "hl-red", red, 5, "Rejoice in the Lord")
	env.highlight(t, "hl-peace", blue, 4, "Peace I leave with you")
	env.highlight(t, "hl-joy", blue, 3, "The joy of the Lord is your strength")
	env.highlight(t, "hl-both", blue, 2, "joy and peace in believing")
	env.highlight(t, "hl-tagged", blue, 1, "Peace be still", "Joy")
	env.highlight(t, "hl-green", green, 6, "")
	env.highlight(t, "hl-unknown", blue, 7, "")

	joy, err := env.resolver.HighlightsForCategory(ctx, "Joy")
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-tagged", "hl-both", "hl-joy", "hl-red", "hl-unknown"}, highlightIDs(joy))

	peace, err := env.resolver.HighlightsForCategory(ctx, "Peace")
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-both", "hl-peace", "hl-unknown"}, highlightIDs(peace))

	other, err := env.resolver.HighlightsForCategory(ctx, "OTHER")
	require.NoError(t, err)
	assert.Equal(t, []string{"hl-green"}, highlightIDs(other))

	none, err := env.resolver.HighlightsForCategory(ctx, "Nothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHighlightsForCategory_EnrichesOnlyAmbiguous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.label(t, red, "Joy")
	env.label(t, blue, "Joy, Peace")

	env.highlight(t, "hl-1", red, 1, "Rejoice")
	env.highlight(t, "hl-2", red, 2, "Rejoice again")
	env.highlight(t, "hl-3", blue, 3, "Peace be with you")
	env.highlight(t, "hl-4", blue, 4, "Peace", "Peace")

	_, err := env.resolver.HighlightsForCategory(ctx, "Joy")
	require.NoError(t, err)
	assert.Equal(t, 1, env.lookup.callCount())

	_, err = env.resolver.HighlightsForCategory(ctx, "Joy")
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.listCalls(), "colors are fetched once")
}
