package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publish sends one typed event. Implementations must be safe for concurrent use.
type Publish[T any] func(ctx context.Context, event *T) error

// Publisher encodes events as JSON watermill messages and owns the underlying publisher.
type Publisher struct {
	publisher message.Publisher
}

// NewPublisher wraps a watermill publisher.
func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{publisher: publisher}
}

// Send marshals payload and publishes it to topic.
func (p *Publisher) Send(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	return p.publisher.Publish(topic, msg)
}

// Shutdown closes the underlying publisher.
func (p *Publisher) Shutdown() error {
	return p.publisher.Close()
}

// NewPublishFunc binds a typed publish function to topic.
func NewPublishFunc[T any](p *Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		return p.Send(ctx, topic, event)
	}
}

// Discard returns a publish function that drops every event.
func Discard[T any]() Publish[T] {
	return func(context.Context, *T) error { return nil }
}
