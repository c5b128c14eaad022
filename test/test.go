// Package test holds a shared exerciser for bytestore.ByteStore
// implementations, reused by the diskcache, leveldbcache, memcachestore,
// mongodbcache, postgresqlcache and rediscache tests, the same role the
// teacher's test package played for its
// Cache interface.
package test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sandrolain/respcache/bytestore"
)

// Store exercises a bytestore.ByteStore implementation's Get/Set/Delete
// contract.
func Store(t *testing.T, store bytestore.ByteStore) {
	t.Helper()

	ctx := context.Background()
	key := "testKey"

	_, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting key: %v", err)
	}
	if ok {
		t.Fatal("retrieved key before adding it")
	}

	val := []byte("some bytes")
	if err := store.Set(ctx, key, val); err != nil {
		t.Fatalf("error setting key: %v", err)
	}

	retVal, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting key: %v", err)
	}
	if !ok {
		t.Fatal("could not retrieve an element we just added")
	}
	if !bytes.Equal(retVal, val) {
		t.Fatal("retrieved a different value than what we put in")
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("error deleting key: %v", err)
	}

	_, ok, err = store.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting key: %v", err)
	}
	if ok {
		t.Fatal("deleted key still present")
	}
}
