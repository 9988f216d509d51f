package audit

import (
	"context"

	"github.com/serroba/shortlink/internal/messaging"
)

// Store persists audit events.
type Store interface {
	Record(ctx context.Context, event *MappingChanged) error
}

// NewHandler adapts store into a message handler for TopicMappingChanged.
func NewHandler(store Store) messaging.Handler[MappingChanged] {
	return func(ctx context.Context, event *MappingChanged) error {
		return store.Record(ctx, event)
	}
}
