// Package leveldbcache is a bytestore.ByteStore backed by
// github.com/syndtr/goleveldb/leveldb, a persistent embedded key-value
// store. Adapted from the teacher's leveldbcache package onto the
// bytestore.ByteStore contract; stale-marking is dropped (no
// stale-while-revalidate concept in this module, see SPEC_FULL
// Non-goals).
package leveldbcache

import (
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// Store wraps a *leveldb.DB.
type Store struct {
	db *leveldb.DB
}

// New opens (or creates) a LevelDB database at path.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open *leveldb.DB.
func NewWithDB(db *leveldb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("leveldbcache: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldbcache: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Keys enumerates every key currently stored, satisfying
// bytestore.KeyLister.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leveldbcache: iteration failed: %w", err)
	}
	return keys, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
