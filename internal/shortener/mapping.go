package shortener

import "errors"

var (
	// ErrNotFound is returned when no mapping exists for a token.
	ErrNotFound = errors.New("short url not found")
	// ErrEmptyURL is returned when a long URL is required but blank.
	ErrEmptyURL = errors.New("long url is empty")
	// ErrTokenTaken is returned when the generated token already exists in the store.
	ErrTokenTaken = errors.New("short token already taken")
	// ErrNothingToRemove is returned by RemoveAll when the store holds no mappings.
	ErrNothingToRemove = errors.New("no mappings to remove")
)

// Mapping pairs a short token with the long URL it points at.
type Mapping struct {
	Token   string
	LongURL string
}
