// Package metrics declares the Prometheus metrics exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Deletion results.
const (
	ResultSuccess  = "success"
	ResultPartial  = "partial"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
	ResultNoop     = "noop"
)

// Verse lookup results.
const (
	LookupHit      = "hit"
	LookupMiss     = "miss"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

var (
	// CategoryDeletions counts DeleteCategory calls by outcome.
	CategoryDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "versemark_category_deletions_total",
		Help: "Category deletions by result",
	}, []string{"result"})

	// HighlightsDeleted counts highlights confirmed deleted by category deletion.
	HighlightsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "versemark_highlights_deleted_total",
		Help: "Highlights removed by category deletion",
	})

	// HighlightsProtected counts ambiguous highlights kept because they matched a sibling label.
	HighlightsProtected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "versemark_highlights_protected_total",
		Help: "Shared highlights protected from category deletion",
	})

	// VerseLookups counts scripture text lookups by result.
	VerseLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "versemark_verse_lookups_total",
		Help: "Verse text lookups by result",
	}, []string{"result"})

	// CategoryDeletionDuration tracks how long DeleteCategory takes end to end.
	CategoryDeletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "versemark_category_deletion_duration_seconds",
		Help:    "Category deletion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
	})
)

// RecordDeletion records the outcome of one category deletion.
func RecordDeletion(result string, deleted, protected int, elapsed time.Duration) {
	CategoryDeletions.WithLabelValues(result).Inc()
	HighlightsDeleted.Add(float64(deleted))
	HighlightsProtected.Add(float64(protected))
	CategoryDeletionDuration.Observe(elapsed.Seconds())
}

// RecordLookup records one verse lookup.
func RecordLookup(result string) {
	VerseLookups.WithLabelValues(result).Inc()
}
