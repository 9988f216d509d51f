package shortener

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service implements the mapping CRUD and lookup contract on top of a Store.
// It holds no locks; consistency comes from the per-key atomicity of the store.
type Service struct {
	store    Store
	newToken TokenGenerator
	logger   *zap.Logger
}

// NewService creates a mapping service writing through store.
func NewService(store Store, generator TokenGenerator, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		newToken: generator,
		logger:   logger,
	}
}

// Get returns the mapping for token, or ErrNotFound.
func (s *Service) Get(ctx context.Context, token string) (*Mapping, error) {
	longURL, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	return &Mapping{Token: token, LongURL: longURL}, nil
}

// GetAll returns every stored mapping in no particular order.
// Keys removed between enumeration and read are skipped.
func (s *Service) GetAll(ctx context.Context) ([]Mapping, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	mappings := make([]Mapping, 0, len(keys))

	for _, key := range keys {
		longURL, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}

			return nil, fmt.Errorf("get %q: %w", key, err)
		}

		mappings = append(mappings, Mapping{Token: key, LongURL: longURL})
	}

	return mappings, nil
}

// Create stores longURL under a freshly generated token.
//
// Exactly one token is generated and one conditional write attempted. A
// collision with an existing token fails the call with ErrTokenTaken and is
// not retried.
func (s *Service) Create(ctx context.Context, longURL string) (*Mapping, error) {
	if longURL == "" {
		return nil, ErrEmptyURL
	}

	mapping := &Mapping{
		Token:   s.newToken(),
		LongURL: NormalizeURL(longURL),
	}

	created, err := s.store.SetIfAbsent(ctx, mapping.Token, mapping.LongURL)
	if err != nil {
		s.logger.Error("create mapping failed", zap.String("token", mapping.Token), zap.Error(err))

		return nil, fmt.Errorf("create %q: %w", mapping.Token, err)
	}

	if !created {
		s.logger.Warn("generated token already taken", zap.String("token", mapping.Token))

		return nil, ErrTokenTaken
	}

	s.logger.Info("mapping created",
		zap.String("token", mapping.Token),
		zap.String("longUrl", mapping.LongURL),
	)

	return mapping, nil
}

// Update points an existing token at a new long URL.
// It returns ErrNotFound without writing when the token does not exist.
func (s *Service) Update(ctx context.Context, token, longURL string) (*Mapping, error) {
	if longURL == "" {
		return nil, ErrEmptyURL
	}

	if _, err := s.store.Get(ctx, token); err != nil {
		return nil, err
	}

	mapping := &Mapping{Token: token, LongURL: NormalizeURL(longURL)}

	if err := s.store.Set(ctx, token, mapping.LongURL); err != nil {
		s.logger.Error("update mapping failed", zap.String("token", token), zap.Error(err))

		return nil, fmt.Errorf("update %q: %w", token, err)
	}

	s.logger.Info("mapping updated",
		zap.String("token", token),
		zap.String("longUrl", mapping.LongURL),
	)

	return mapping, nil
}

// Remove deletes the mapping for token, or returns ErrNotFound when there is none.
func (s *Service) Remove(ctx context.Context, token string) error {
	if _, err := s.store.Get(ctx, token); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, token); err != nil {
		s.logger.Error("remove mapping failed", zap.String("token", token), zap.Error(err))

		return fmt.Errorf("remove %q: %w", token, err)
	}

	s.logger.Info("mapping removed", zap.String("token", token))

	return nil
}

// RemoveAll deletes every mapping and returns how many were removed.
// An empty store is reported as ErrNothingToRemove.
func (s *Service) RemoveAll(ctx context.Context) (int, error) {
	mappings, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	if len(mappings) == 0 {
		return 0, ErrNothingToRemove
	}

	for i, m := range mappings {
		if err := s.store.Delete(ctx, m.Token); err != nil {
			s.logger.Error("remove all interrupted",
				zap.String("token", m.Token),
				zap.Int("removed", i),
				zap.Error(err),
			)

			return i, fmt.Errorf("remove %q: %w", m.Token, err)
		}
	}

	s.logger.Info("all mappings removed", zap.Int("count", len(mappings)))

	return len(mappings), nil
}
