// Package postgresqlcache is a bytestore.ByteStore backed by PostgreSQL
// via jackc/pgx/v5, for deployments that want cache entries in the
// same database as the rest of their data. Adapted from the teacher's
// postgresql package onto the bytestore.ByteStore contract;
// stale-marking is dropped (no stale-while-revalidate concept in this
// module, see SPEC_FULL Non-goals).
package postgresqlcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNilPool is returned when a nil pool is provided.
	ErrNilPool = errors.New("postgresqlcache: pool cannot be nil")
	// ErrNilConn is returned when a nil connection is provided.
	ErrNilConn = errors.New("postgresqlcache: connection cannot be nil")
)

const (
	// DefaultTableName is the default table name for cache storage.
	DefaultTableName = "respcache"
	// DefaultKeyPrefix is the default prefix for cache keys.
	DefaultKeyPrefix = "cache:"
)

// Store is a bytestore.ByteStore backed by a PostgreSQL table.
type Store struct {
	pool      *pgxpool.Pool
	conn      *pgx.Conn
	tableName string
	keyPrefix string
	timeout   time.Duration
}

// Config holds the configuration for the PostgreSQL store.
type Config struct {
	// TableName is the name of the table to store cache entries (default: "respcache").
	TableName string
	// KeyPrefix is the prefix to add to all cache keys (default: "cache:").
	KeyPrefix string
	// Timeout is the maximum time to wait for database operations (default: 5s).
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TableName: DefaultTableName,
		KeyPrefix: DefaultKeyPrefix,
		Timeout:   5 * time.Second,
	}
}

func (s *Store) cacheKey(key string) string {
	return s.keyPrefix + key
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var data []byte
	query := `SELECT data FROM ` + s.tableName + ` WHERE key = $1`

	var err error
	if s.pool != nil {
		err = s.pool.QueryRow(ctx, query, s.cacheKey(key)).Scan(&data)
	} else {
		err = s.conn.QueryRow(ctx, query, s.cacheKey(key)).Scan(&data)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("postgresqlcache: get failed for key %q: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO ` + s.tableName + ` (key, data, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = $2, created_at = $3
	`

	var err error
	if s.pool != nil {
		_, err = s.pool.Exec(ctx, query, s.cacheKey(key), value, time.Now())
	} else {
		_, err = s.conn.Exec(ctx, query, s.cacheKey(key), value, time.Now())
	}
	if err != nil {
		return fmt.Errorf("postgresqlcache: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM ` + s.tableName + ` WHERE key = $1`

	var err error
	if s.pool != nil {
		_, err = s.pool.Exec(ctx, query, s.cacheKey(key))
	} else {
		_, err = s.conn.Exec(ctx, query, s.cacheKey(key))
	}
	if err != nil {
		return fmt.Errorf("postgresqlcache: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Clear truncates the cache table, satisfying bytestore.Clearer.
func (s *Store) Clear(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `TRUNCATE TABLE ` + s.tableName
	var err error
	if s.pool != nil {
		_, err = s.pool.Exec(ctx, query)
	} else {
		_, err = s.conn.Exec(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("postgresqlcache: clear failed: %w", err)
	}
	return nil
}

// Keys lists every key currently stored with its prefix stripped,
// satisfying bytestore.KeyLister.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT key FROM ` + s.tableName
	var rows pgx.Rows
	var err error
	if s.pool != nil {
		rows, err = s.pool.Query(ctx, query)
	} else {
		rows, err = s.conn.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("postgresqlcache: keys failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("postgresqlcache: keys scan failed: %w", err)
		}
		keys = append(keys, key[len(s.keyPrefix):])
	}
	return keys, rows.Err()
}

// CreateTable creates the cache table if it doesn't exist.
func (s *Store) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`
	var err error
	if s.pool != nil {
		_, err = s.pool.Exec(ctx, query)
	} else {
		_, err = s.conn.Exec(ctx, query)
	}
	return err
}

// Close closes the connection pool or connection.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	} else if s.conn != nil {
		s.conn.Close(context.Background()) //nolint:errcheck // best effort cleanup
	}
}

// NewWithPool returns a new Store using the provided connection pool.
func NewWithPool(pool *pgxpool.Pool, config *Config) (*Store, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Store{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

// NewWithConn returns a new Store using the provided connection.
func NewWithConn(conn *pgx.Conn, config *Config) (*Store, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Store{
		conn:      conn,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

// New creates a new Store with a connection pool from the given
// connection string, creating the cache table if it doesn't exist.
func New(ctx context.Context, connString string, config *Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}

	store := &Store{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}

	if err := store.CreateTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}
