package service

import "sync"

// ColorCache records which colors have had their highlights loaded for display.
// A color stays loaded until a mutation touching it invalidates it.
type ColorCache struct {
	mu     sync.RWMutex
	loaded map[string]struct{}
}

// NewColorCache creates an empty cache.
func NewColorCache() *ColorCache {
	return &ColorCache{loaded: make(map[string]struct{})}
}

// Has reports whether every given color is loaded.
func (c *ColorCache) Has(colors ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, color := range colors {
		if _, ok := c.loaded[color]; !ok {
			return false
		}
	}
	return true
}

// MarkLoaded records colors as loaded.
func (c *ColorCache) MarkLoaded(colors ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, color := range colors {
		c.loaded[color] = struct{}{}
	}
}

// Invalidate forgets colors so the next display load refetches them.
func (c *ColorCache) Invalidate(colors ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, color := range colors {
		delete(c.loaded, color)
	}
}

// missing returns the colors not yet loaded, in input order.
func (c *ColorCache) missing(colors []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for _, color := range colors {
		if _, ok := c.loaded[color]; !ok {
			out = append(out, color)
		}
	}
	return out
}
