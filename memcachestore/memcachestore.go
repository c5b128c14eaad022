// Package memcachestore is a bytestore.ByteStore backed by
// github.com/bradfitz/gomemcache, for deployments that already run a
// shared memcached fleet. Adapted from the teacher's memcache package
// onto the bytestore.ByteStore contract; stale-marking is dropped (no
// stale-while-revalidate concept in this module, see SPEC_FULL
// Non-goals). The legacy App Engine build (appengine.go in the
// teacher) is not carried over: it targets a retired platform SDK with
// no equivalent in this module's dependency surface.
package memcachestore

import (
	"context"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
)

// Store wraps a *memcache.Client.
type Store struct {
	client *memcache.Client
}

// cacheKey prefixes keys to avoid collision with other data stored in
// the same memcached instance.
func cacheKey(key string) string {
	return "respcache:" + key
}

// New returns a Store using the given memcache server(s) with equal
// weight. If a server is listed multiple times, it gets a
// proportional amount of weight.
func New(server ...string) *Store {
	return NewWithClient(memcache.New(server...))
}

// NewWithClient wraps an already-configured *memcache.Client.
func NewWithClient(client *memcache.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.client.Get(cacheKey(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	item := &memcache.Item{Key: cacheKey(key), Value: value}
	if err := s.client.Set(item); err != nil {
		return fmt.Errorf("memcachestore: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.client.Delete(cacheKey(key)); err != nil {
		if err == memcache.ErrCacheMiss {
			return nil
		}
		return fmt.Errorf("memcachestore: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Clear flushes the entire memcached instance, satisfying
// bytestore.Clearer. Note this affects every key on the server, not
// just keys this Store wrote.
func (s *Store) Clear(_ context.Context) error {
	if err := s.client.DeleteAll(); err != nil {
		return fmt.Errorf("memcachestore: clear failed: %w", err)
	}
	return nil
}
