// Package freecachestore is a bytestore.ByteStore backed by
// github.com/coocood/freecache, a zero-GC-overhead in-process cache
// with LRU eviction. Suitable for single-process deployments wanting
// to cache many entries without per-entry GC pressure, adapted from
// the teacher's freecache package onto the bytestore.ByteStore
// contract (the stale-marking methods are dropped: this module has no
// stale-while-revalidate concept, see SPEC_FULL Non-goals).
package freecachestore

import (
	"context"
	"fmt"

	"github.com/coocood/freecache"
)

// Store wraps a *freecache.Cache.
type Store struct {
	cache *freecache.Cache
}

// New creates a Store with the given size in bytes (512KB minimum per
// freecache). Entries never expire on their own; eviction happens only
// when the cache is full and follows freecache's LRU policy.
func New(sizeBytes int) *Store {
	return &Store{cache: freecache.NewCache(sizeBytes)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := s.cache.Get([]byte(key))
	if err != nil {
		if err == freecache.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.cache.Set([]byte(key), value, 0); err != nil {
		return fmt.Errorf("freecachestore: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Del([]byte(key))
	return nil
}

// Clear removes every entry, satisfying bytestore.Clearer.
func (s *Store) Clear(_ context.Context) error {
	s.cache.Clear()
	return nil
}

// EntryCount reports the number of entries currently stored.
func (s *Store) EntryCount() int64 {
	return s.cache.EntryCount()
}

// HitRate reports the ratio of cache hits to total lookups.
func (s *Store) HitRate() float64 {
	return s.cache.HitRate()
}
