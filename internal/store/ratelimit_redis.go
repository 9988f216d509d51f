package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WindowRedisStore is a Redis implementation of ratelimit.Store.
// Each key is a sorted set of hit timestamps, so every instance shares the counters.
type WindowRedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewWindowRedisStore creates a new Redis-backed sliding window store.
func NewWindowRedisStore(client redis.UniversalClient) *WindowRedisStore {
	return &WindowRedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *WindowRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	zkey := s.prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, zkey, "-inf", cutoff)
		pipe.ZAdd(ctx, zkey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		count = pipe.ZCard(ctx, zkey)
		pipe.PExpire(ctx, zkey, window)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis record hit: %w", err)
	}

	return count.Val(), nil
}
