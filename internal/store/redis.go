package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

const scanBatch = 500

// RedisStore is a Redis implementation of shortener.Store.
// Each mapping is a plain string key "url:<token>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "url:",
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	url, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrNotFound
		}

		return "", fmt.Errorf("redis get: %w", err)
	}

	return url, nil
}

// Keys walks the keyspace with SCAN so large stores never block the server.
// SCAN may return a key more than once; duplicates are dropped.
func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	keys := []string{}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), r.prefix)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	return keys, nil
}

func (r *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}

	return ok, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Compile-time check.
var _ shortener.Store = (*RedisStore)(nil)
