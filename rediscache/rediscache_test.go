package rediscache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sandrolain/respcache/test"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping test; no server running at localhost:6379")
	}
	_ = client.FlushAll(ctx)

	test.Store(t, NewWithClient(client))
}

func TestRedisStoreNewWithEmptyAddress(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected error with empty address")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxRetries != 3 {
		t.Errorf("expected MaxRetries to be 3, got %d", config.MaxRetries)
	}
	if config.PoolSize != 10 {
		t.Errorf("expected PoolSize to be 10, got %d", config.PoolSize)
	}
	if config.DialTimeout != 5e9 {
		t.Errorf("expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}
	if config.ReadTimeout != 5e9 {
		t.Errorf("expected ReadTimeout to be 5s, got %v", config.ReadTimeout)
	}
	if config.WriteTimeout != 5e9 {
		t.Errorf("expected WriteTimeout to be 5s, got %v", config.WriteTimeout)
	}
	if config.DB != 0 {
		t.Errorf("expected DB to be 0, got %d", config.DB)
	}
}
