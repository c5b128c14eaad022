//go:build integration

package mongodbcache

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/respcache/test"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongoDBContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:8",
		mongodb.WithUsername("root"),
		mongodb.WithPassword("password"),
	)
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return uri
}

func TestMongoDBIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	uri := setupMongoDBContainer(t)
	ctx := context.Background()

	store, err := New(ctx, Config{
		URI:        uri,
		Database:   "respcache_test",
		Collection: "cache_integration",
		Timeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	test.Store(t, store)
}

func TestMongoDBIntegrationTTLIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	uri := setupMongoDBContainer(t)
	ctx := context.Background()

	store, err := New(ctx, Config{
		URI:        uri,
		Database:   "respcache_test",
		Collection: "cache_ttl",
		Timeout:    10 * time.Second,
		TTL:        1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create store with TTL index: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "ttl-key", []byte("ttl-value")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := store.Get(ctx, "ttl-key")
	if err != nil || !ok {
		t.Fatalf("Get: value=%q ok=%v err=%v", value, ok, err)
	}
}
