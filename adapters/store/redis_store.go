package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onchain-academy/gatekeeper/ports"
)

// RedisStore is a redis-backed implementation of ports.Store for
// multi-instance deployments. Expiry is delegated to redis TTLs, so no
// sweeper is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a redis store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "gatekeeper:",
	}
}

// Set writes a key with a TTL.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get retrieves a live value by key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// GetDel atomically retrieves and deletes a value. GETDEL executes as a
// single redis command, which gives first-consumer-wins across instances.
func (s *RedisStore) GetDel(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis getdel: %w", err)
	}
	return value, nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Client returns the underlying redis client so the caller can share it
// with the event stream publisher.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}
