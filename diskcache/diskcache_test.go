package diskcache

import (
	"os"
	"testing"

	"github.com/sandrolain/respcache/test"
)

func TestDiskStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "respcache")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	test.Store(t, New(tempDir))
}

func TestDiskStoreClear(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "respcache")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	store := New(tempDir)
	ctx := t.Context()
	if err := store.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	_, ok, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected key to be absent after Clear")
	}
}
