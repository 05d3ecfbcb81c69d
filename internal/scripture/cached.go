package scripture

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/metrics"
)

// CachedLookup memoizes verse text from another Lookup. Misses and errors are not cached.
type CachedLookup struct {
	next  Lookup
	cache *ristretto.Cache[string, string]
}

// NewCachedLookup wraps next with a cache holding up to maxVerses entries.
func NewCachedLookup(next Lookup, maxVerses int64) (*CachedLookup, error) {
	if maxVerses <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxVerses)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxVerses * 10,
		MaxCost:     maxVerses,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create verse cache: %w", err)
	}

	return &CachedLookup{next: next, cache: cache}, nil
}

// GetVerseText implements Lookup.
func (c *CachedLookup) GetVerseText(ctx context.Context, ref domain.VerseRef) (string, error) {
	key := ref.Key()
	if text, ok := c.cache.Get(key); ok {
		metrics.RecordLookup(metrics.LookupHit)
		return text, nil
	}

	text, err := c.next.GetVerseText(ctx, ref)
	switch {
	case errors.Is(err, ErrVerseNotFound):
		metrics.RecordLookup(metrics.LookupNotFound)
		return "", err
	case err != nil:
		metrics.RecordLookup(metrics.LookupError)
		return "", err
	}

	metrics.RecordLookup(metrics.LookupMiss)
	c.cache.Set(key, text, 1)
	c.cache.Wait()
	return text, nil
}

// Close stops the cache's background goroutines.
func (c *CachedLookup) Close() {
	c.cache.Close()
}
