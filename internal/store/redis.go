package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/i474232898/climate-station-map/internal/stations"
)

const keyPrefix = "stations:snapshot:"

// RedisStore shares decoded collections between dashboard processes.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, options *redis.Options, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(options)

	log.Printf("INFO: store: connecting to redis at %s", options.Addr)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Printf("INFO: store: connected to redis")

	return &RedisStore{
		client: client,
		ttl:    ttl,
		backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     1 * time.Second,
		},
		circuit: newBreaker("redis-snapshots"),
	}, nil
}

func snapshotKey(signature string) string {
	return keyPrefix + signature
}

// SaveCollection writes the collection as JSON under its signature.
func (s *RedisStore) SaveCollection(ctx context.Context, coll *stations.DatasetCollection) error {
	if coll == nil || coll.Signature == "" {
		return errors.New("collection has no signature")
	}

	payload, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := snapshotKey(coll.Signature)
	_, err = executeWithResilience(ctx, s.backoff, s.circuit, func() (interface{}, error) {
		return nil, s.client.Set(ctx, key, payload, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}
	return nil
}

// LoadCollection reads the collection stored for signature. A missing key
// yields ErrNotFound.
func (s *RedisStore) LoadCollection(ctx context.Context, signature string) (*stations.DatasetCollection, error) {
	key := snapshotKey(signature)

	result, err := executeWithResilience(ctx, s.backoff, s.circuit, func() (interface{}, error) {
		b, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is a healthy answer and must not trip the breaker.
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", key, err)
	}

	b, ok := result.([]byte)
	if !ok || b == nil {
		return nil, ErrNotFound
	}

	var coll stations.DatasetCollection
	if err := json.Unmarshal(b, &coll); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return &coll, nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
