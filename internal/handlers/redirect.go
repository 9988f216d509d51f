package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// TokenResolver looks up the mapping behind a token.
type TokenResolver interface {
	Get(ctx context.Context, token string) (*shortener.Mapping, error)
}

// RedirectHandler turns short tokens into redirects.
type RedirectHandler struct {
	resolver TokenResolver
	logger   *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(resolver TokenResolver, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Redirect answers 303 See Other so the follow-up request is always a GET.
func (h *RedirectHandler) Redirect(ctx context.Context, req *TokenRequest) (*RedirectResponse, error) {
	m, err := h.resolver.Get(ctx, req.ShortToken)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	// Stored URLs are normalized on write; anything unparsable here is corrupt data.
	if _, err := url.Parse(m.LongURL); err != nil {
		h.logger.Error("stored url is malformed",
			zap.String("token", m.Token),
			zap.String("longUrl", m.LongURL),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("stored url is malformed")
	}

	return &RedirectResponse{
		Status:   http.StatusSeeOther,
		Location: m.LongURL,
	}, nil
}
