// Package rediscache is a bytestore.ByteStore backed by Redis via
// github.com/redis/go-redis/v9. Adapted from the teacher's redis
// package, which used gomodule/redigo despite the rest of the module
// standardizing on go-redis; this rewrite follows go.mod and the
// ecosystem's current client.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the configuration for creating a Store.
type Config struct {
	// Address is the Redis server address (e.g., "localhost:6379").
	// Required field.
	Address string

	// Password is the Redis password for authentication. Optional.
	Password string

	// DB is the Redis database number to use. Optional - defaults to 0.
	DB int

	// PoolSize is the maximum number of socket connections. Optional -
	// defaults to 10.
	PoolSize int

	// MaxRetries is the maximum number of retries before giving up.
	// Optional - defaults to 3.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	// Optional - defaults to 5 seconds.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads. Optional - defaults
	// to 5 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes. Optional -
	// defaults to 5 seconds.
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:     10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		DB:           0,
	}
}

// Store wraps a *redis.Client.
type Store struct {
	client *redis.Client
	owned  bool
}

// cacheKey prefixes keys to avoid collision with other data stored in
// the same Redis instance.
func cacheKey(key string) string {
	return "respcache:" + key
}

// New creates a Store from the given configuration, establishing a new
// client. The caller must call Close when done.
func New(config Config) (*Store, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("rediscache: address is required")
	}

	def := DefaultConfig()
	if config.PoolSize == 0 {
		config.PoolSize = def.PoolSize
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = def.DialTimeout
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = def.WriteTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rediscache: failed to connect to Redis: %w", err)
	}

	return &Store{client: client, owned: true}, nil
}

// NewWithClient wraps an already-configured *redis.Client. Close on the
// returned Store is a no-op: the caller owns the client's lifecycle.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("rediscache: get failed for key %q: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, cacheKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("rediscache: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("rediscache: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Clear removes every key written under this Store's prefix,
// satisfying bytestore.Clearer.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, "respcache:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rediscache: clear scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("rediscache: clear failed: %w", err)
	}
	return nil
}

// Keys lists every key currently stored with its prefix stripped,
// satisfying bytestore.KeyLister.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	iter := s.client.Scan(ctx, 0, "respcache:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len("respcache:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("rediscache: keys failed: %w", err)
	}
	return keys, nil
}

// Close closes the underlying client. A no-op on a Store built with
// NewWithClient.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
