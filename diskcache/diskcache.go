// Package diskcache is a bytestore.ByteStore backed by
// github.com/peterbourgon/diskv, persisting entries as files under a
// base directory with an in-memory LRU layer on top. Adapted from the
// teacher's diskcache package onto the bytestore.ByteStore contract;
// stale-marking is dropped (no stale-while-revalidate concept in this
// module, see SPEC_FULL Non-goals).
package diskcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/peterbourgon/diskv"
)

// Store wraps a *diskv.Diskv.
type Store struct {
	d *diskv.Diskv
}

// New returns a Store that will write files under basePath.
func New(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024,
		}),
	}
}

// NewWithDiskv wraps an already-configured *diskv.Diskv.
func NewWithDiskv(d *diskv.Diskv) *Store {
	return &Store{d: d}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := s.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false, nil
	}
	return data, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.d.WriteStream(keyToFilename(key), bytes.NewReader(value), true); err != nil {
		return fmt.Errorf("diskcache: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	_ = s.d.Erase(keyToFilename(key)) //nolint:errcheck // file not found is acceptable
	return nil
}

// Clear removes every entry, satisfying bytestore.Clearer.
func (s *Store) Clear(_ context.Context) error {
	if err := s.d.EraseAll(); err != nil {
		return fmt.Errorf("diskcache: clear failed: %w", err)
	}
	return nil
}

func keyToFilename(key string) string {
	h := sha256.New()
	//nolint:errcheck // io.WriteString to hash.Hash never fails
	_, _ = io.WriteString(h, key)
	return hex.EncodeToString(h.Sum(nil))
}
