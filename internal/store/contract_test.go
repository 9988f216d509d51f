package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the shortener.Store behavior every backend must share.
// Keys are randomized so shared backends can run it repeatedly; cleanup removes them.
func testStoreContract(t *testing.T, s shortener.Store) {
	t.Helper()

	ctx := context.Background()
	key := func() string {
		k := "t" + uuid.NewString()[:8]
		t.Cleanup(func() { _ = s.Delete(context.Background(), k) })

		return k
	}

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		url, err := s.Get(ctx, key())

		assert.Empty(t, url)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("set if absent writes once", func(t *testing.T) {
		k := key()

		created, err := s.SetIfAbsent(ctx, k, "https://first.com")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = s.SetIfAbsent(ctx, k, "https://second.com")
		require.NoError(t, err)
		assert.False(t, created)

		got, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "https://first.com", got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		k := key()

		require.NoError(t, s.Set(ctx, k, "https://old.com"))
		require.NoError(t, s.Set(ctx, k, "https://new.com"))

		got, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "https://new.com", got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		k := key()

		require.NoError(t, s.Set(ctx, k, "https://example.com"))
		require.NoError(t, s.Delete(ctx, k))
		require.NoError(t, s.Delete(ctx, k))

		_, err := s.Get(ctx, k)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("keys enumerates stored tokens", func(t *testing.T) {
		a, b := key(), key()

		require.NoError(t, s.Set(ctx, a, "https://a.com"))
		require.NoError(t, s.Set(ctx, b, "https://b.com"))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, a)
		assert.Contains(t, keys, b)

		require.NoError(t, s.Delete(ctx, a))

		keys, err = s.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, a)
	})
}
