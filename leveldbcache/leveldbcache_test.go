package leveldbcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandrolain/respcache/test"
)

func TestLevelDBStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "respcache")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	store, err := New(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("New leveldb: %v", err)
	}
	defer store.Close()

	test.Store(t, store)
}

func TestLevelDBStoreKeys(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "respcache")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	store, err := New(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("New leveldb: %v", err)
	}
	defer store.Close()

	ctx := t.Context()
	if err := store.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "b", []byte("2")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}
