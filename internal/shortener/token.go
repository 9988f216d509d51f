package shortener

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	// MaxTokenLength is the number of hex characters in a 128-bit identifier.
	MaxTokenLength = 32
	// MinNanoIDTokenLength is the shortest id go-nanoid will generate.
	MinNanoIDTokenLength = 2
)

// TokenGenerator returns a fresh short token on every call.
// Tokens are not unique by construction; the store decides.
type TokenGenerator func() string

// NewUUIDGenerator slices the hex form of a random v4 UUID down to length characters.
func NewUUIDGenerator(length int) (TokenGenerator, error) {
	if length < 1 || length > MaxTokenLength {
		return nil, fmt.Errorf("token length %d out of range [1, %d]", length, MaxTokenLength)
	}

	return func() string {
		id := uuid.New()

		return hex.EncodeToString(id[:])[:length]
	}, nil
}

// NewNanoIDGenerator draws tokens of the given length from the nanoid URL-safe alphabet.
func NewNanoIDGenerator(length int) (TokenGenerator, error) {
	if length < MinNanoIDTokenLength || length > MaxTokenLength {
		return nil, fmt.Errorf("token length %d out of range [%d, %d]", length, MinNanoIDTokenLength, MaxTokenLength)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("nanoid generator: %w", err)
	}

	return TokenGenerator(gen), nil
}
