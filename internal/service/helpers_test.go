package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/color"
	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/scripture"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
	"github.com/versemark/versemark-server/internal/store/sqlite"
	"github.com/versemark/versemark-server/internal/store/storetest"
)

const (
	red    = "#FF0000"
	green  = "#00FF00"
	blue   = "#0000FF"
	yellow = "#FFEB3B"
)

var testPalette = []domain.HighlightColor{
	{Hex: red, DefaultName: "Red"},
	{Hex: green, DefaultName: "Green"},
	{Hex: blue, DefaultName: "Blue"},
	{Hex: yellow, DefaultName: "Yellow"},
}

// faultyStore wraps a real SQLite store and fails selected calls on demand.
type faultyStore struct {
	store.Store

	mu                sync.Mutex
	upsertErr         error
	listByColorsErr   error
	listByColorsCalls int
	deleteBatchErr    func(batch []string) error
}

func (s *faultyStore) UpsertAssignment(ctx context.Context, a *domain.CategoryAssignment) error {
	s.mu.Lock()
	err := s.upsertErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.UpsertAssignment(ctx, a)
}

func (s *faultyStore) ListHighlightsByColors(ctx context.Context, colors []string) ([]*domain.Highlight, error) {
	s.mu.Lock()
	s.listByColorsCalls++
	err := s.listByColorsErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.ListHighlightsByColors(ctx, colors)
}

func (s *faultyStore) DeleteHighlights(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	hook := s.deleteBatchErr
	s.mu.Unlock()
	if hook != nil {
		if err := hook(ids); err != nil {
			return 0, err
		}
	}
	return s.Store.DeleteHighlights(ctx, ids)
}

func (s *faultyStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listByColorsCalls
}

// countingLookup serves verse text from a map and counts calls.
type countingLookup struct {
	mu    sync.Mutex
	texts map[string]string
	calls int
	err   error
	hook  func()
}

func (l *countingLookup) GetVerseText(_ context.Context, ref domain.VerseRef) (string, error) {
	if l.hook != nil {
		l.hook()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.err != nil {
		return "", l.err
	}
	text, ok := l.texts[ref.Key()]
	if !ok {
		return "", scripture.ErrVerseNotFound
	}
	return text, nil
}

func (l *countingLookup) set(ref domain.VerseRef, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts[ref.Key()] = text
}

func (l *countingLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// eventRecorder collects emitted events.
type eventRecorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *eventRecorder) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store      *faultyStore
	lookup     *countingLookup
	events     *eventRecorder
	cache      *ColorCache
	categories *CategoryService
	highlights *HighlightService
	resolver   *Resolver
	deletion   *DeletionService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithBatch(t, DefaultDeleteBatchSize)
}

func newTestEnvWithBatch(t *testing.T, batchSize int) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	base, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })

	palette, err := color.NewPalette(testPalette)
	require.NoError(t, err)

	env := &testEnv{
		store:  &faultyStore{Store: base},
		lookup: &countingLookup{texts: make(map[string]string)},
		events: &eventRecorder{},
		cache:  NewColorCache(),
	}
	env.categories = NewCategoryService(env.store, palette, env.events, logger)
	env.highlights = NewHighlightService(env.store, env.lookup, env.cache, palette, env.events, logger, batchSize)
	env.resolver = NewResolver(env.categories, env.highlights, logger)
	env.deletion = NewDeletionService(env.categories, env.highlights, env.cache, env.events, logger)
	return env
}

// label names a color through the service, as a user would.
func (e *testEnv) label(t *testing.T, colorHex, raw string) {
	t.Helper()
	_, err := e.categories.SetLabel(context.Background(), colorHex, raw)
	require.NoError(t, err)
}

// emptyRow stores an assignment with no labels, as a legacy import of blank text would.
func (e *testEnv) emptyRow(t *testing.T, colorHex string) {
	t.Helper()
	_, err := e.categories.ImportLegacy(context.Background(), map[string]string{colorHex: ""})
	require.NoError(t, err)
}

// highlight stores a highlight on JHN 3:verse and registers its verse text.
// An empty text leaves the verse unknown to the lookup.
func (e *testEnv) highlight(t *testing.T, hlID, colorHex string, verse int, text string, label ...string) *domain.Highlight {
	t.Helper()
	h := storetest.MakeHighlight(hlID, colorHex, verse)
	if len(label) > 0 {
		h.Label = &label[0]
	}
	require.NoError(t, e.store.Store.CreateHighlight(context.Background(), h))
	if text != "" {
		e.lookup.set(h.Ref(), text)
	}
	return h
}

func (e *testEnv) remainingIDs(t *testing.T) []string {
	t.Helper()
	hs, err := e.store.Store.ListHighlights(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	return ids
}

func (e *testEnv) assignmentCount(t *testing.T) int {
	t.Helper()
	rows, err := e.store.Store.ListAssignments(context.Background())
	require.NoError(t, err)
	return len(rows)
}

func highlightIDs(hs []*domain.Highlight) []string {
	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	return ids
}

func categoryNames(cs []domain.Category) []string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.Name)
	}
	return names
}
