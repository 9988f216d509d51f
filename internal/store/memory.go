package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Store.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[string]string // token -> long url
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[key]
	if !ok {
		return "", shortener.ErrNotFound
	}

	return url, nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.urls))
	for k := range m.urls {
		keys = append(keys, k)
	}

	return keys, nil
}

func (m *MemoryStore) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[key]; ok {
		return false, nil
	}

	m.urls[key] = value

	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls[key] = value

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.urls, key)

	return nil
}

// Compile-time check.
var _ shortener.Store = (*MemoryStore)(nil)
