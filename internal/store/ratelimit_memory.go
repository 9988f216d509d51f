package store

import (
	"context"
	"sync"
	"time"
)

// WindowMemoryStore is an in-memory implementation of ratelimit.Store.
type WindowMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewWindowMemoryStore creates a new in-memory sliding window store.
func NewWindowMemoryStore() *WindowMemoryStore {
	return &WindowMemoryStore{
		hits: make(map[string][]time.Time),
	}
}

func (s *WindowMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	kept := pruneBefore(s.hits[key], now.Add(-window))
	kept = append(kept, now)
	s.hits[key] = kept

	return int64(len(kept)), nil
}

// pruneBefore drops the leading timestamps not after cutoff. Hits are appended
// in time order, so everything past the first survivor is kept as well.
func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range hits {
		if ts.After(cutoff) {
			return hits[i:]
		}
	}

	return hits[:0]
}
