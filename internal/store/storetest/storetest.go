// Package storetest holds a behavioral test suite every store.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/store"
)

// Factory opens a fresh, empty store for one test.
type Factory func(t *testing.T) store.Store

// Run executes the suite against the backend produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AssignmentLifecycle", func(t *testing.T) { testAssignmentLifecycle(t, newStore(t)) })
	t.Run("EmptyLabelSet", func(t *testing.T) { testEmptyLabelSet(t, newStore(t)) })
	t.Run("HighlightCRUD", func(t *testing.T) { testHighlightCRUD(t, newStore(t)) })
	t.Run("HighlightUniquePerVerse", func(t *testing.T) { testHighlightUniquePerVerse(t, newStore(t)) })
	t.Run("HighlightColorQueries", func(t *testing.T) { testHighlightColorQueries(t, newStore(t)) })
	t.Run("UpdateHighlightMovesColor", func(t *testing.T) { testUpdateHighlightMovesColor(t, newStore(t)) })
	t.Run("DeleteHighlightsBatch", func(t *testing.T) { testDeleteHighlightsBatch(t, newStore(t)) })
	t.Run("Verses", func(t *testing.T) { testVerses(t, newStore(t)) })
}

// MakeHighlight builds a highlight on JHN 3:verse in KJV.
func MakeHighlight(id, color string, verse int) *domain.Highlight {
	now := time.Now().UTC()
	return &domain.Highlight{
		VerseRef:  domain.VerseRef{BookID: "JHN", Chapter: 3, Verse: verse, Version: "KJV"},
		ID:        id,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testAssignmentLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetAssignment(ctx, "#FF0000"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetAssignment on empty store: got %v, want ErrNotFound", err)
	}

	a := &domain.CategoryAssignment{Color: "#FF0000", Labels: []string{"Faith", "Hope"}, UpdatedAt: time.Now()}
	if err := s.UpsertAssignment(ctx, a); err != nil {
		t.Fatalf("UpsertAssignment: %v", err)
	}

	got, err := s.GetAssignment(ctx, "#FF0000")
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if fmt.Sprint(got.Labels) != "[Faith Hope]" {
		t.Errorf("Labels: got %v, want [Faith Hope]", got.Labels)
	}
	if got.UpdatedAt.Unix() != a.UpdatedAt.Unix() {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, a.UpdatedAt)
	}

	a.Labels = []string{"Hope"}
	if err := s.UpsertAssignment(ctx, a); err != nil {
		t.Fatalf("UpsertAssignment (replace): %v", err)
	}
	if err := s.UpsertAssignment(ctx, &domain.CategoryAssignment{Color: "#0000FF", Labels: []string{"Joy"}, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertAssignment: %v", err)
	}

	all, err := s.ListAssignments(ctx)
	if err != nil {
		t.Fatalf("ListAssignments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAssignments: got %d rows, want 2", len(all))
	}
	if all[0].Color != "#0000FF" || all[1].Color != "#FF0000" {
		t.Errorf("ListAssignments order: got %s, %s", all[0].Color, all[1].Color)
	}
	if fmt.Sprint(all[1].Labels) != "[Hope]" {
		t.Errorf("replaced labels: got %v", all[1].Labels)
	}

	if err := s.DeleteAssignment(ctx, "#FF0000"); err != nil {
		t.Fatalf("DeleteAssignment: %v", err)
	}
	if err := s.DeleteAssignment(ctx, "#FF0000"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteAssignment: got %v, want ErrNotFound", err)
	}
}

func testEmptyLabelSet(t *testing.T, s store.Store) {
	ctx := context.Background()

	if err := s.UpsertAssignment(ctx, &domain.CategoryAssignment{Color: "#00FF00", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertAssignment: %v", err)
	}
	got, err := s.GetAssignment(ctx, "#00FF00")
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if got.Labels == nil || len(got.Labels) != 0 {
		t.Errorf("Labels: got %#v, want empty non-nil slice", got.Labels)
	}
}

func testHighlightCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	label := "Faith"
	h := MakeHighlight("hl-1", "#FF0000", 16)
	h.Label = &label
	text := "transient"
	h.Text = &text

	if err := s.CreateHighlight(ctx, h); err != nil {
		t.Fatalf("CreateHighlight: %v", err)
	}
	if err := s.CreateHighlight(ctx, h); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate CreateHighlight: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetHighlight(ctx, "hl-1")
	if err != nil {
		t.Fatalf("GetHighlight: %v", err)
	}
	if got.Ref() != h.Ref() || got.Color != "#FF0000" {
		t.Errorf("GetHighlight: got %+v", got)
	}
	if got.Label == nil || *got.Label != "Faith" {
		t.Errorf("Label: got %v, want Faith", got.Label)
	}
	if got.Text != nil {
		t.Errorf("Text should not be persisted, got %q", *got.Text)
	}

	got.Label = nil
	got.UpdatedAt = time.Now().UTC()
	if err := s.UpdateHighlight(ctx, got); err != nil {
		t.Fatalf("UpdateHighlight: %v", err)
	}
	again, err := s.GetHighlight(ctx, "hl-1")
	if err != nil {
		t.Fatalf("GetHighlight after update: %v", err)
	}
	if again.Label != nil {
		t.Errorf("Label after clearing: got %q", *again.Label)
	}

	if err := s.UpdateHighlight(ctx, MakeHighlight("hl-missing", "#FF0000", 1)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateHighlight missing: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteHighlight(ctx, "hl-1"); err != nil {
		t.Fatalf("DeleteHighlight: %v", err)
	}
	if _, err := s.GetHighlight(ctx, "hl-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetHighlight after delete: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteHighlight(ctx, "hl-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteHighlight twice: got %v, want ErrNotFound", err)
	}
}

func testHighlightUniquePerVerse(t *testing.T, s store.Store) {
	ctx := context.Background()

	if err := s.CreateHighlight(ctx, MakeHighlight("hl-1", "#FF0000", 16)); err != nil {
		t.Fatalf("CreateHighlight: %v", err)
	}
	err := s.CreateHighlight(ctx, MakeHighlight("hl-2", "#0000FF", 16))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("same verse, new id: got %v, want ErrAlreadyExists", err)
	}

	other := MakeHighlight("hl-3", "#0000FF", 16)
	other.Version = "ESV"
	if err := s.CreateHighlight(ctx, other); err != nil {
		t.Errorf("same verse, other version: %v", err)
	}
}

func testHighlightColorQueries(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i, color := range []string{"#FF0000", "#FF0000", "#00FF00", "#0000FF"} {
		h := MakeHighlight(fmt.Sprintf("hl-%d", i), color, i+1)
		if err := s.CreateHighlight(ctx, h); err != nil {
			t.Fatalf("CreateHighlight %d: %v", i, err)
		}
	}

	got, err := s.ListHighlightsByColors(ctx, []string{"#FF0000", "#0000FF"})
	if err != nil {
		t.Fatalf("ListHighlightsByColors: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListHighlightsByColors: got %d, want 3", len(got))
	}
	for _, h := range got {
		if h.Color == "#00FF00" {
			t.Errorf("unexpected color in result: %s", h.ID)
		}
	}

	none, err := s.ListHighlightsByColors(ctx, nil)
	if err != nil {
		t.Fatalf("ListHighlightsByColors(nil): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListHighlightsByColors(nil): got %d", len(none))
	}

	counts, err := s.CountHighlightsByColor(ctx)
	if err != nil {
		t.Fatalf("CountHighlightsByColor: %v", err)
	}
	want := map[string]int{"#FF0000": 2, "#00FF00": 1, "#0000FF": 1}
	if fmt.Sprint(counts) != fmt.Sprint(want) {
		t.Errorf("CountHighlightsByColor: got %v, want %v", counts, want)
	}

	all, err := s.ListHighlights(ctx)
	if err != nil {
		t.Fatalf("ListHighlights: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListHighlights: got %d, want 4", len(all))
	}
}

func testUpdateHighlightMovesColor(t *testing.T, s store.Store) {
	ctx := context.Background()

	h := MakeHighlight("hl-1", "#FF0000", 1)
	if err := s.CreateHighlight(ctx, h); err != nil {
		t.Fatalf("CreateHighlight: %v", err)
	}

	h.Color = "#0000FF"
	if err := s.UpdateHighlight(ctx, h); err != nil {
		t.Fatalf("UpdateHighlight: %v", err)
	}

	red, err := s.ListHighlightsByColors(ctx, []string{"#FF0000"})
	if err != nil {
		t.Fatalf("ListHighlightsByColors: %v", err)
	}
	if len(red) != 0 {
		t.Errorf("old color still indexed: %d", len(red))
	}
	blue, err := s.ListHighlightsByColors(ctx, []string{"#0000FF"})
	if err != nil {
		t.Fatalf("ListHighlightsByColors: %v", err)
	}
	if len(blue) != 1 {
		t.Errorf("new color: got %d, want 1", len(blue))
	}
}

func testDeleteHighlightsBatch(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := s.CreateHighlight(ctx, MakeHighlight(fmt.Sprintf("hl-%d", i), "#FF0000", i)); err != nil {
			t.Fatalf("CreateHighlight: %v", err)
		}
	}

	n, err := s.DeleteHighlights(ctx, []string{"hl-1", "hl-3", "hl-unknown"})
	if err != nil {
		t.Fatalf("DeleteHighlights: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteHighlights: got %d, want 2", n)
	}

	counts, err := s.CountHighlightsByColor(ctx)
	if err != nil {
		t.Fatalf("CountHighlightsByColor: %v", err)
	}
	if counts["#FF0000"] != 1 {
		t.Errorf("remaining: got %d, want 1", counts["#FF0000"])
	}

	// The freed verse can be highlighted again.
	if err := s.CreateHighlight(ctx, MakeHighlight("hl-4", "#00FF00", 1)); err != nil {
		t.Errorf("re-highlight freed verse: %v", err)
	}
}

func testVerses(t *testing.T, s store.Store) {
	ctx := context.Background()
	ref := domain.VerseRef{BookID: "1CO", Chapter: 13, Verse: 13, Version: "KJV"}

	if _, err := s.GetVerse(ctx, ref); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetVerse on empty store: got %v, want ErrNotFound", err)
	}

	v := &domain.Verse{VerseRef: ref, Text: "And now abideth faith, hope, charity"}
	if err := s.UpsertVerse(ctx, v); err != nil {
		t.Fatalf("UpsertVerse: %v", err)
	}
	v.Text = "And now abideth faith, hope, charity, these three"
	if err := s.UpsertVerse(ctx, v); err != nil {
		t.Fatalf("UpsertVerse (replace): %v", err)
	}

	got, err := s.GetVerse(ctx, ref)
	if err != nil {
		t.Fatalf("GetVerse: %v", err)
	}
	if got.Text != v.Text || got.VerseRef != ref {
		t.Errorf("GetVerse: got %+v", got)
	}
}
