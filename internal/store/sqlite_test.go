package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, newSQLiteStore(t, store.SQLiteMemory))
}

func TestSQLiteStore_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "shortlink.db")

	s, err := store.NewSQLiteStore(ctx, path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "abcde", "https://example.com"))
	require.NoError(t, s.Shutdown())

	reopened := newSQLiteStore(t, path)

	got, err := reopened.Get(ctx, "abcde")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)
	assert.NoError(t, reopened.Ping(ctx))
}

func TestSQLiteStore_Keys(t *testing.T) {
	s := newSQLiteStore(t, store.SQLiteMemory)

	keys, err := s.Keys(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}
