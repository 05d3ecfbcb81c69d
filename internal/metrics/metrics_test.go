package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDeletion(t *testing.T) {
	before := testutil.ToFloat64(CategoryDeletions.WithLabelValues(ResultSuccess))
	deletedBefore := testutil.ToFloat64(HighlightsDeleted)
	protectedBefore := testutil.ToFloat64(HighlightsProtected)

	RecordDeletion(ResultSuccess, 3, 1, 20*time.Millisecond)

	assert.InDelta(t, before+1, testutil.ToFloat64(CategoryDeletions.WithLabelValues(ResultSuccess)), 0.001)
	assert.InDelta(t, deletedBefore+3, testutil.ToFloat64(HighlightsDeleted), 0.001)
	assert.InDelta(t, protectedBefore+1, testutil.ToFloat64(HighlightsProtected), 0.001)
}

func TestRecordLookup(t *testing.T) {
	before := testutil.ToFloat64(VerseLookups.WithLabelValues(LookupMiss))
	RecordLookup(LookupMiss)
	assert.InDelta(t, before+1, testutil.ToFloat64(VerseLookups.WithLabelValues(LookupMiss)), 0.001)
}
