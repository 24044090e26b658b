package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with a Redis backend.
// Data and timestamp are written in one pipeline so a reader never observes
// a timestamp without its payload.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Get returns the raw bytes stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return data, nil
}

// Set stores the payload and its write timestamp.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ts float64) error {
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Set(ctx, key+TimestampSuffix, ts, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheWriteBytes.WithLabelValues("redis").Set(float64(len(data)))
	return nil
}

// Timestamp returns the epoch-seconds write timestamp for key.
func (s *RedisStore) Timestamp(ctx context.Context, key string) (float64, error) {
	ts, err := s.redis.Get(ctx, key+TimestampSuffix).Float64()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "timestamp").Inc()
		return 0, fmt.Errorf("redis get timestamp: %w", err)
	}
	return ts, nil
}
