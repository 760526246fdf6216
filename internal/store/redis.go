package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps values in a Redis server. All keys are namespaced as
// lingua:{namespace}:{key} so several profiles can share one server.
type Redis struct {
	rdb       *redis.Client
	namespace string
}

// NewRedis creates a Redis-backed store for the given namespace.
func NewRedis(opts *redis.Options, namespace string) (*Redis, error) {
	if namespace == "" {
		return nil, fmt.Errorf("redis namespace cannot be empty")
	}
	return &Redis{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
	}, nil
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf("lingua:%s:%s", r.namespace, k)
}

// Get implements KV.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return v, true, nil
}

// Set implements KV.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Remove implements KV.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
