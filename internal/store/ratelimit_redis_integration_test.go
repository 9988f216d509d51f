//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowRedisStoreIntegration(t *testing.T) {
	client := newRedisClient(t)
	s := store.NewWindowRedisStore(client)
	ctx := context.Background()

	t.Run("counts hits within the window", func(t *testing.T) {
		key := "test:" + uuid.NewString()
		defer client.Del(ctx, "ratelimit:"+key)

		for want := int64(1); want <= 3; want++ {
			got, err := s.Record(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("drops hits older than the window", func(t *testing.T) {
		key := "test:" + uuid.NewString()
		defer client.Del(ctx, "ratelimit:"+key)

		_, err := s.Record(ctx, key, 50*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		got, err := s.Record(ctx, key, 50*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("sets an expiry on the counter", func(t *testing.T) {
		key := "test:" + uuid.NewString()
		defer client.Del(ctx, "ratelimit:"+key)

		_, err := s.Record(ctx, key, time.Minute)
		require.NoError(t, err)

		ttl, err := client.PTTL(ctx, "ratelimit:"+key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
