package scripture

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

var john316 = domain.VerseRef{BookID: "JHN", Chapter: 3, Verse: 16, Version: "KJV"}

type verseMap map[domain.VerseRef]string

func (m verseMap) GetVerse(_ context.Context, ref domain.VerseRef) (*domain.Verse, error) {
	text, ok := m[ref]
	if !ok {
		return nil, store.NotFound("verse", ref.Key())
	}
	return &domain.Verse{VerseRef: ref, Text: text}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLookup(t *testing.T) {
	l := NewStoreLookup(verseMap{john316: "For God so loved the world"})

	text, err := l.GetVerseText(context.Background(), john316)
	require.NoError(t, err)
	assert.Equal(t, "For God so loved the world", text)

	_, err = l.GetVerseText(context.Background(), domain.VerseRef{BookID: "GEN", Chapter: 1, Verse: 1, Version: "KJV"})
	assert.ErrorIs(t, err, ErrVerseNotFound)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "In the  beginning\n", "In the beginning"},
		{"words of christ", `<span class="wj">I am the way</span>, the truth`, "I am the way, the truth"},
		{"footnote dropped", "Jesus wept.<sup>a</sup>", "Jesus wept."},
		{"entities", "faith &amp; hope", "faith & hope"},
		{"line break", "Blessed are<br/>the meek", "Blessed are the meek"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestClient_GetVerseText(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text": "For God so <i>loved</i> the world"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1", 100, discardLogger())
	defer c.Close()

	text, err := c.GetVerseText(context.Background(), john316)
	require.NoError(t, err)
	assert.Equal(t, "For God so loved the world", text)
	assert.Equal(t, "/v1/KJV/JHN/3/16", gotPath)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrVerseNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 100, discardLogger())
			defer c.Close()

			_, err := c.GetVerseText(context.Background(), john316)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 100, discardLogger())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetVerseText(ctx, john316)
	assert.Error(t, err)
}

func TestCachedLookup(t *testing.T) {
	var calls atomic.Int32
	next := LookupFunc(func(_ context.Context, ref domain.VerseRef) (string, error) {
		calls.Add(1)
		if ref == john316 {
			return "For God so loved the world", nil
		}
		return "", ErrVerseNotFound
	})

	c, err := NewCachedLookup(next, 100)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	for range 3 {
		text, err := c.GetVerseText(ctx, john316)
		require.NoError(t, err)
		assert.Equal(t, "For God so loved the world", text)
	}
	assert.Equal(t, int32(1), calls.Load())

	missing := domain.VerseRef{BookID: "GEN", Chapter: 1, Verse: 1, Version: "KJV"}
	_, err = c.GetVerseText(ctx, missing)
	assert.ErrorIs(t, err, ErrVerseNotFound)
	_, err = c.GetVerseText(ctx, missing)
	assert.ErrorIs(t, err, ErrVerseNotFound)
	assert.Equal(t, int32(3), calls.Load(), "misses must not be cached")
}

func TestNewCachedLookup_RejectsZeroSize(t *testing.T) {
	_, err := NewCachedLookup(LookupFunc(nil), 0)
	assert.Error(t, err)
}
