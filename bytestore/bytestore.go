// Package bytestore adapts respcache.Cache[K] onto raw byte-oriented
// backends, the same Get/Set/Delete([]byte) shape the teacher's Cache
// interface exposed before this module's Cache[K] generic was
// introduced. Concrete backend packages (rediscache, diskcache, ...)
// implement ByteStore and are bridged into respcache.Cache[K] via
// Adapt.
package bytestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/sandrolain/respcache"
)

// ByteStore is used by Adapt to store and retrieve the gob-encoded
// representation of a *respcache.CachedResponse. It is the byte-slice
// contract the teacher's backend packages (redis, diskcache, freecache,
// leveldbcache, memcache, postgresql, mongodb) were all written
// against.
type ByteStore interface {
	// Get returns the stored bytes for key. Returns (nil, false, nil)
	// when the key doesn't exist.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data against key.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes the value associated with key. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, key string) error
}

// Clearer is implemented by backends with a native bulk-clear
// operation (e.g. FLUSHALL, DROP TABLE); Adapt.InvalidateAll prefers
// it when present.
type Clearer interface {
	Clear(ctx context.Context) error
}

// KeyLister is implemented by backends that can enumerate their keys;
// Adapt.InvalidateAll falls back to Keys+Delete when the backend isn't
// a Clearer.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

func init() {
	gob.Register(&respcache.CommonCacheKey{})
}

// Adapt bridges a ByteStore into a respcache.Cache[K] by gob-encoding
// and decoding *respcache.CachedResponse around every call.
type Adapt[K respcache.CacheKey] struct {
	store ByteStore
}

// NewAdapt wraps store as a respcache.Cache[K].
func NewAdapt[K respcache.CacheKey](store ByteStore) *Adapt[K] {
	return &Adapt[K]{store: store}
}

func (a *Adapt[K]) Get(ctx context.Context, key K) (*respcache.CachedResponse, bool, error) {
	raw, ok, err := a.store.Get(ctx, key.String())
	if err != nil {
		return nil, false, fmt.Errorf("bytestore: get failed: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var entry respcache.CachedResponse
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
		return nil, false, fmt.Errorf("bytestore: decode failed: %w", err)
	}
	return &entry, true, nil
}

// Put gob-encodes entry and stores it under key.String(). entry.Duration
// is kept inside the encoded value but is not passed to the store as an
// expiry: entries expire only if the underlying store expires them on
// its own.
func (a *Adapt[K]) Put(ctx context.Context, key K, entry *respcache.CachedResponse) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("bytestore: encode failed: %w", err)
	}
	if err := a.store.Set(ctx, key.String(), buf.Bytes()); err != nil {
		return fmt.Errorf("bytestore: set failed: %w", err)
	}
	return nil
}

func (a *Adapt[K]) Invalidate(ctx context.Context, key K) error {
	if err := a.store.Delete(ctx, key.String()); err != nil {
		return fmt.Errorf("bytestore: delete failed: %w", err)
	}
	return nil
}

func (a *Adapt[K]) InvalidateAll(ctx context.Context) error {
	if clearer, ok := a.store.(Clearer); ok {
		if err := clearer.Clear(ctx); err != nil {
			return fmt.Errorf("bytestore: clear failed: %w", err)
		}
		return nil
	}

	lister, ok := a.store.(KeyLister)
	if !ok {
		return fmt.Errorf("bytestore: underlying store supports neither Clearer nor KeyLister")
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return fmt.Errorf("bytestore: keys failed: %w", err)
	}
	for _, k := range keys {
		if err := a.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("bytestore: delete failed during invalidate all: %w", err)
		}
	}
	return nil
}

var _ respcache.Cache[*respcache.CommonCacheKey] = (*Adapt[*respcache.CommonCacheKey])(nil)
