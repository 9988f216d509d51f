package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer feeds the messages of one topic to a typed handler.
//
// Payloads that are not valid JSON for T are acked and dropped, since
// redelivery cannot fix them. Handler errors and panics nack the message.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handle     Handler[T]
	logger     *zap.Logger
	stop       context.CancelFunc
	stopped    chan struct{}
}

// NewConsumer creates a consumer for topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handle Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handle:     handle,
		logger:     logger.With(zap.String("topic", topic)),
		stopped:    make(chan struct{}),
	}
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and consumes in the background until Shutdown or until the
// subscription channel closes.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.stop = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.stop()
		close(c.stopped)

		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}

	go func() {
		defer close(c.stopped)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				c.deliver(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer[T]) deliver(ctx context.Context, msg *message.Message) {
	logger := c.logger.With(zap.String("messageId", msg.UUID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error("dropping undecodable event", zap.Error(err))
		msg.Ack()

		return
	}

	if err := c.safeHandle(ctx, &event); err != nil {
		logger.Error("event handler failed", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()
}

func (c *Consumer[T]) safeHandle(ctx context.Context, event *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return c.handle(ctx, event)
}

// Shutdown stops consuming and waits for the in-flight message.
// It is a no-op when the consumer was never started.
func (c *Consumer[T]) Shutdown() error {
	if c.stop == nil {
		return nil
	}

	c.stop()
	<-c.stopped

	return nil
}
