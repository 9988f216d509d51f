package store

import (
	"context"

	"github.com/serroba/shortlink/internal/audit"
	"go.uber.org/zap"
)

// Log is an audit.Store that writes each event as a structured log line.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new log-backed audit store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("audit")}
}

func (l *Log) Record(_ context.Context, event *audit.MappingChanged) error {
	fields := []zap.Field{
		zap.String("action", string(event.Action)),
		zap.Time("occurredAt", event.OccurredAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
	}

	if event.RequestID != "" {
		fields = append(fields, zap.String("requestId", event.RequestID))
	}

	if event.Token != "" {
		fields = append(fields, zap.String("token", event.Token))
	}

	if event.LongURL != "" {
		fields = append(fields, zap.String("longUrl", event.LongURL))
	}

	if event.Action == audit.ActionRemovedAll {
		fields = append(fields, zap.Int("count", event.Count))
	}

	l.logger.Info("mapping changed", fields...)

	return nil
}

// Compile-time check.
var _ audit.Store = (*Log)(nil)
