package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// Checker reports whether a backend is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler handles health check operations.
type Handler struct {
	backend string
	checker Checker
}

// NewHandler creates a health handler for the named store backend.
// A nil checker means the backend is in-process and always healthy.
func NewHandler(backend string, checker Checker) *Handler {
	return &Handler{backend: backend, checker: checker}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status  string `enum:"ok,degraded"        json:"status"`
		Backend string `example:"redis"           json:"backend"`
		Store   string `enum:"healthy,unhealthy" json:"store"`
	}
}

// Check reports degraded, never an error status, when the store is unreachable.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Backend = h.backend
	resp.Body.Store = "healthy"

	if h.checker == nil {
		return resp, nil
	}

	if err := h.checker.Ping(ctx); err != nil {
		resp.Body.Store = "unhealthy"
		resp.Body.Status = "degraded"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.Endpoint{Disabled: true},
		},
	}, h.Check)
}
