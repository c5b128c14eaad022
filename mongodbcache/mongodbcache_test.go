package mongodbcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sandrolain/respcache/test"
)

func TestMongoDBStore(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	store, err := New(ctx, Config{
		URI:        uri,
		Database:   "respcache_test",
		Collection: "cache_test",
		Timeout:    2 * time.Second,
	})
	if err != nil {
		t.Skipf("skipping MongoDB tests: %v", err)
		return
	}
	defer store.Close()

	test.Store(t, store)
}

func TestMongoDBStoreConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{name: "missing URI", config: Config{Database: "respcache_test"}, expectError: true},
		{name: "missing database", config: Config{URI: "mongodb://localhost:27017"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.config)
			if tt.expectError && err == nil {
				t.Fatal("expected error but got none")
			}
		})
	}
}

func TestMongoDBDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Collection != "respcache" {
		t.Errorf("expected default collection 'respcache', got %q", config.Collection)
	}
	if config.KeyPrefix != "cache:" {
		t.Errorf("expected default key prefix 'cache:', got %q", config.KeyPrefix)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %v", config.Timeout)
	}
}
