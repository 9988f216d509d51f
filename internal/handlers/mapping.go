package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/audit"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// MappingService is the mapping contract the HTTP layer depends on.
type MappingService interface {
	Get(ctx context.Context, token string) (*shortener.Mapping, error)
	GetAll(ctx context.Context) ([]shortener.Mapping, error)
	Create(ctx context.Context, longURL string) (*shortener.Mapping, error)
	Update(ctx context.Context, token, longURL string) (*shortener.Mapping, error)
	Remove(ctx context.Context, token string) error
	RemoveAll(ctx context.Context) (int, error)
}

// MappingHandler exposes mapping CRUD over HTTP.
type MappingHandler struct {
	service       MappingService
	publishChange messaging.Publish[audit.MappingChanged]
	logger        *zap.Logger
}

// NewMappingHandler creates a new mapping handler.
func NewMappingHandler(
	service MappingService,
	publishChange messaging.Publish[audit.MappingChanged],
	logger *zap.Logger,
) *MappingHandler {
	return &MappingHandler{
		service:       service,
		publishChange: publishChange,
		logger:        logger,
	}
}

func (h *MappingHandler) GetMapping(ctx context.Context, req *TokenRequest) (*MappingResponse, error) {
	m, err := h.service.Get(ctx, req.ShortToken)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return &MappingResponse{Body: toBody(*m)}, nil
}

func (h *MappingHandler) ListMappings(ctx context.Context, _ *struct{}) (*MappingListResponse, error) {
	mappings, err := h.service.GetAll(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &MappingListResponse{Body: make([]MappingBody, 0, len(mappings))}
	for _, m := range mappings {
		resp.Body = append(resp.Body, toBody(m))
	}

	return resp, nil
}

func (h *MappingHandler) CreateMapping(ctx context.Context, req *CreateMappingRequest) (*CreateMappingResponse, error) {
	longURL := strings.TrimSpace(string(req.RawBody))
	if longURL == "" {
		return nil, huma.Error400BadRequest("long url must not be empty")
	}

	m, err := h.service.Create(ctx, longURL)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create short url")
	}

	h.publish(ctx, &audit.MappingChanged{Action: audit.ActionCreated, Token: m.Token, LongURL: m.LongURL})

	return &CreateMappingResponse{
		Location: "/" + m.Token,
		Body:     toBody(*m),
	}, nil
}

func (h *MappingHandler) UpdateMapping(ctx context.Context, req *UpdateMappingRequest) (*MappingResponse, error) {
	longURL := strings.TrimSpace(string(req.RawBody))
	if longURL == "" {
		return nil, huma.Error400BadRequest("long url must not be empty")
	}

	m, err := h.service.Update(ctx, req.ShortToken, longURL)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to update url")
	}

	h.publish(ctx, &audit.MappingChanged{Action: audit.ActionUpdated, Token: m.Token, LongURL: m.LongURL})

	return &MappingResponse{Body: toBody(*m)}, nil
}

func (h *MappingHandler) DeleteMapping(ctx context.Context, req *TokenRequest) (*struct{}, error) {
	if err := h.service.Remove(ctx, req.ShortToken); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to delete url")
	}

	h.publish(ctx, &audit.MappingChanged{Action: audit.ActionRemoved, Token: req.ShortToken})

	return nil, nil
}

// DeleteAllMappings answers 500 when there was nothing to delete.
func (h *MappingHandler) DeleteAllMappings(ctx context.Context, _ *struct{}) (*struct{}, error) {
	n, err := h.service.RemoveAll(ctx)
	if err != nil {
		if errors.Is(err, shortener.ErrNothingToRemove) {
			return nil, huma.Error500InternalServerError("nothing to delete")
		}

		return nil, huma.Error500InternalServerError("failed to delete urls")
	}

	h.publish(ctx, &audit.MappingChanged{Action: audit.ActionRemovedAll, Count: n})

	return nil, nil
}

// publish stamps the event with request metadata. Failures are logged, never returned.
func (h *MappingHandler) publish(ctx context.Context, event *audit.MappingChanged) {
	meta := RequestMetaFromContext(ctx)
	event.RequestID = meta.RequestID
	event.ClientIP = meta.ClientIP
	event.UserAgent = meta.UserAgent
	event.OccurredAt = time.Now()

	if err := h.publishChange(ctx, event); err != nil {
		h.logger.Error("failed to publish change event",
			zap.String("action", string(event.Action)),
			zap.String("token", event.Token),
			zap.Error(err),
		)
	}
}

func toBody(m shortener.Mapping) MappingBody {
	return MappingBody{ShortURL: m.Token, LongURL: m.LongURL}
}
