package respcache

import "context"

// Cache is the abstraction the core state machine depends on (§4.1,
// §6 Cache contract). Implementations must be cheap to pass around by
// value or pointer such that all holders observe the same logical
// store (shared handle semantics) — the way the teacher's byte-keyed
// Cache is a thin handle over a shared backend.
//
// get-after-put visibility is backend-defined; the core makes no
// ordering promise across concurrent requests beyond what a given
// backend offers (§5).
type Cache[K CacheKey] interface {
	// Get returns the cached entry for key, or ok=false if absent.
	Get(ctx context.Context, key K) (entry *CachedResponse, ok bool, err error)
	// Put stores entry under key, honoring entry.Duration as TTL when
	// set, otherwise a backend default.
	Put(ctx context.Context, key K, entry *CachedResponse) error
	// Invalidate removes a single entry. Absence of the key is not an
	// error.
	Invalidate(ctx context.Context, key K) error
	// InvalidateAll clears every entry. Per §9 Open Question, whether
	// this is observed synchronously is backend-defined; callers must
	// treat it as "eventually observed".
	InvalidateAll(ctx context.Context) error
}

// TieredCache composes two caches with no backend cooperation (§4.1,
// §9). Get reads First then Next, short-circuiting on a First hit; Put,
// Invalidate and InvalidateAll fan out to both. No write-back
// promotion is performed on a Next-only hit — that is a deliberate
// deviation from the teacher's wrapper/multicache, which promotes
// entries to faster tiers; this type intentionally does not, per the
// specification (see DESIGN.md).
type TieredCache[K CacheKey] struct {
	First Cache[K]
	Next  Cache[K]
}

// NewTieredCache composes first and next into a single Cache.
func NewTieredCache[K CacheKey](first, next Cache[K]) *TieredCache[K] {
	return &TieredCache[K]{First: first, Next: next}
}

func (t *TieredCache[K]) Get(ctx context.Context, key K) (*CachedResponse, bool, error) {
	if entry, ok, err := t.First.Get(ctx, key); err != nil {
		return nil, false, err
	} else if ok {
		return entry, true, nil
	}
	return t.Next.Get(ctx, key)
}

func (t *TieredCache[K]) Put(ctx context.Context, key K, entry *CachedResponse) error {
	if err := t.First.Put(ctx, key, entry); err != nil {
		return err
	}
	return t.Next.Put(ctx, key, entry)
}

func (t *TieredCache[K]) Invalidate(ctx context.Context, key K) error {
	if err := t.First.Invalidate(ctx, key); err != nil {
		return err
	}
	return t.Next.Invalidate(ctx, key)
}

func (t *TieredCache[K]) InvalidateAll(ctx context.Context) error {
	if err := t.First.InvalidateAll(ctx); err != nil {
		return err
	}
	return t.Next.InvalidateAll(ctx)
}
