package prometheus

import (
	"context"
	"time"

	"github.com/sandrolain/respcache"
	"github.com/sandrolain/respcache/metrics"
)

// InstrumentedCache wraps a respcache.Cache[K] and records Prometheus
// metrics for every operation, the domain equivalent of the teacher's
// InstrumentedTransport adapted from RoundTripper-level instrumentation
// to Cache[K]-level instrumentation (this module's middleware has no
// RoundTripper to wrap).
type InstrumentedCache[K respcache.CacheKey] struct {
	underlying respcache.Cache[K]
	collector  metrics.Collector
	backend    string
}

// NewInstrumentedCache wraps underlying, labeling every metric with
// backend (e.g. "memory", "redis", "leveldb"). If collector is nil,
// metrics.DefaultCollector (a no-op) is used.
func NewInstrumentedCache[K respcache.CacheKey](underlying respcache.Cache[K], backend string, collector metrics.Collector) *InstrumentedCache[K] {
	if collector == nil {
		collector = metrics.DefaultCollector
	}
	return &InstrumentedCache[K]{underlying: underlying, collector: collector, backend: backend}
}

func (c *InstrumentedCache[K]) Get(ctx context.Context, key K) (*respcache.CachedResponse, bool, error) {
	start := time.Now()
	entry, ok, err := c.underlying.Get(ctx, key)
	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	c.collector.RecordCacheOperation("get", c.backend, result, time.Since(start))
	if ok && entry != nil {
		c.collector.RecordCacheSize(c.backend, int64(entry.Weight()))
	}
	return entry, ok, err
}

func (c *InstrumentedCache[K]) Put(ctx context.Context, key K, entry *respcache.CachedResponse) error {
	start := time.Now()
	err := c.underlying.Put(ctx, key, entry)
	result := "success"
	if err != nil {
		result = "error"
	}
	c.collector.RecordCacheOperation("put", c.backend, result, time.Since(start))
	return err
}

func (c *InstrumentedCache[K]) Invalidate(ctx context.Context, key K) error {
	start := time.Now()
	err := c.underlying.Invalidate(ctx, key)
	result := "success"
	if err != nil {
		result = "error"
	}
	c.collector.RecordCacheOperation("delete", c.backend, result, time.Since(start))
	return err
}

func (c *InstrumentedCache[K]) InvalidateAll(ctx context.Context) error {
	start := time.Now()
	err := c.underlying.InvalidateAll(ctx)
	result := "success"
	if err != nil {
		result = "error"
	}
	c.collector.RecordCacheOperation("delete_all", c.backend, result, time.Since(start))
	return err
}

var _ respcache.Cache[*respcache.CommonCacheKey] = (*InstrumentedCache[*respcache.CommonCacheKey])(nil)
