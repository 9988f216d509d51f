package ratelimit

import (
	"context"
	"time"
)

// Store keeps per-key request timestamps for sliding windows.
type Store interface {
	// Record adds a hit for key and returns how many hits fall inside the trailing window,
	// including this one. Hits older than the window are discarded.
	Record(ctx context.Context, key string, window time.Duration) (int64, error)
}
