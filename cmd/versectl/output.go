package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/labels"
	"github.com/versemark/versemark-server/internal/service"
)

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	red   = color.New(color.FgRed)
)

func newTable(header ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = bold.Sprint(h)
	}
	tbl.AddRow(cols...)
	return tbl
}

func printCategories(w io.Writer, categories []domain.Category) {
	if len(categories) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint("no categories"))
		return
	}
	tbl := newTable("CATEGORY", "COLORS")
	for _, c := range categories {
		name := c.Name
		if c.Synthetic {
			name = faint.Sprint(name)
		}
		tbl.AddRow(name, strings.Join(c.Colors, " "))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printHighlights(w io.Writer, hs []*domain.Highlight) {
	if len(hs) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint("no highlights"))
		return
	}
	tbl := newTable("ID", "VERSE", "COLOR", "LABEL", "TEXT")
	for _, h := range hs {
		label, text := "", ""
		if h.Label != nil {
			label = *h.Label
		}
		if h.Text != nil {
			text = *h.Text
		}
		tbl.AddRow(h.ID, h.Ref().String(), h.Color, label, text)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printAssignment(w io.Writer, a *domain.CategoryAssignment) {
	if a.IsEmpty() {
		_, _ = fmt.Fprintf(w, "%s  %s\n", a.Color, faint.Sprint("(unassigned)"))
		return
	}
	_, _ = fmt.Fprintf(w, "%s  %s\n", a.Color, labels.Join(a.Labels))
}

func printReport(w io.Writer, r *service.DeleteReport) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Category:"), r.Category)
	tbl.AddRow(bold.Sprint("Colors:"), strings.Join(r.Colors, " "))
	tbl.AddRow(bold.Sprint("Candidates:"), r.Candidates)
	tbl.AddRow(bold.Sprint("Deleted:"), fmt.Sprintf("%d of %d", r.Deleted, r.Requested))
	tbl.AddRow(bold.Sprint("Protected:"), r.Protected)
	tbl.AddRow(bold.Sprint("Assignments:"), fmt.Sprintf("%d removed, %d updated", r.AssignmentsRemoved, r.AssignmentsUpdated))
	if len(r.Failed) > 0 {
		tbl.AddRow(red.Sprint("Failed:"), strings.Join(r.Failed, " "))
	}
	tbl.AddRow(bold.Sprint("Took:"), r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintln(w, tbl)
}
