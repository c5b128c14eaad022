// Package mongodbcache is a bytestore.ByteStore backed by MongoDB via
// go.mongodb.org/mongo-driver, suitable for deployments that already
// run MongoDB as shared infrastructure and want cache entries to
// survive process restarts. Adapted from the teacher's mongodb
// package onto the bytestore.ByteStore contract (the teacher's own
// cache type didn't actually satisfy its Cache interface: its
// Get/Set/Delete methods took no context and returned no error).
package mongodbcache

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds the configuration for creating a Store.
type Config struct {
	// URI is the MongoDB connection URI (e.g., "mongodb://localhost:27017").
	URI string
	// Database is the name of the database to use for caching.
	Database string
	// Collection is the name of the collection to use for caching.
	// Optional - defaults to "respcache".
	Collection string
	// KeyPrefix is a prefix added to all cache keys. Optional -
	// defaults to "cache:".
	KeyPrefix string
	// Timeout bounds every database operation. Optional - defaults to
	// 5 seconds.
	Timeout time.Duration
	// TTL, if set, creates a TTL index on the storedAt field so
	// MongoDB itself expires old entries.
	TTL time.Duration
	// ClientOptions are additional options passed to mongo.Connect.
	ClientOptions *options.ClientOptions
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Collection: "respcache",
		KeyPrefix:  "cache:",
		Timeout:    5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.Collection == "" {
		c.Collection = DefaultConfig().Collection
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultConfig().KeyPrefix
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultConfig().Timeout
	}
	return c
}

type entry struct {
	Key      string    `bson:"_id"`
	Data     []byte    `bson:"data"`
	StoredAt time.Time `bson:"storedAt"`
}

// Store wraps a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	keyPrefix  string
	timeout    time.Duration
}

func (s *Store) cacheKey(key string) string {
	return s.keyPrefix + key
}

// New connects to MongoDB and returns a Store. The caller must call
// Close when done.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongodbcache: URI is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("mongodbcache: database name is required")
	}
	config = config.withDefaults()

	clientOpts := options.Client().ApplyURI(config.URI)
	if config.ClientOptions != nil {
		clientOpts = config.ClientOptions.ApplyURI(config.URI)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodbcache: failed to connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodbcache: failed to ping: %w", err)
	}

	s := &Store{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}

	if config.TTL > 0 {
		if err := s.createTTLIndex(ctx, config.TTL); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongodbcache: failed to create TTL index: %w", err)
		}
	}

	return s, nil
}

// NewWithClient wraps an already-connected *mongo.Client. The returned
// Store's Close is a no-op: the caller owns the client's lifecycle.
func NewWithClient(client *mongo.Client, database, collection string, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("mongodbcache: client is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongodbcache: database name is required")
	}
	if collection == "" {
		collection = DefaultConfig().Collection
	}
	config = config.withDefaults()

	return &Store{
		collection: client.Database(database).Collection(collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var found entry
	err := s.collection.FindOne(ctx, bson.M{"_id": s.cacheKey(key)}).Decode(&found)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mongodbcache: get failed: %w", err)
	}
	return found.Data, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := entry{Key: s.cacheKey(key), Data: value, StoredAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts); err != nil {
		return fmt.Errorf("mongodbcache: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": s.cacheKey(key)}); err != nil {
		return fmt.Errorf("mongodbcache: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Clear removes every document in the collection, satisfying
// bytestore.Clearer.
func (s *Store) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("mongodbcache: clear failed: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB. A no-op on a Store built with
// NewWithClient.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) createTTLIndex(ctx context.Context, ttl time.Duration) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "storedAt", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(int32(ttl.Seconds())).
			SetName("respcache_ttl"),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
