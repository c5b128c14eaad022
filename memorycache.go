package respcache

import (
	"context"
	"sync"
)

// MemoryCache is the default Cache[K]: an in-process map of cache key
// string to *CachedResponse, guarded by a RWMutex, grounded on the
// teacher's MemoryCache. TTL is not enforced here (no eviction engine
// is mandated by §6); it stores whatever Duration a CachedResponse
// carries purely for callers to introspect.
type MemoryCache[K CacheKey] struct {
	mu    sync.RWMutex
	items map[string]*CachedResponse
}

// NewMemoryCache returns a new empty MemoryCache.
func NewMemoryCache[K CacheKey]() *MemoryCache[K] {
	return &MemoryCache[K]{items: make(map[string]*CachedResponse)}
}

func (c *MemoryCache[K]) Get(_ context.Context, key K) (*CachedResponse, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key.String()]
	c.mu.RUnlock()
	return entry, ok, nil
}

func (c *MemoryCache[K]) Put(_ context.Context, key K, entry *CachedResponse) error {
	c.mu.Lock()
	c.items[key.String()] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache[K]) Invalidate(_ context.Context, key K) error {
	c.mu.Lock()
	delete(c.items, key.String())
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache[K]) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]*CachedResponse)
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries currently stored, useful for
// tests and metrics.
func (c *MemoryCache[K]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
