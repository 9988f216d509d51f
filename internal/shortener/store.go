package shortener

import "context"

// Store is the key-value contract the Service persists mappings through.
// Every method is atomic for the single key it touches.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Keys enumerates every stored key. Order is unspecified.
	Keys(ctx context.Context) ([]string, error)

	// SetIfAbsent writes value only when key does not exist yet.
	// It reports whether the write happened.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// Set writes value under key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
