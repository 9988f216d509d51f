package messaging_test

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// failingPublisher rejects every message.
type failingPublisher struct {
	err error
}

func (f failingPublisher) Publish(string, ...*message.Message) error { return f.err }
func (f failingPublisher) Close() error                              { return f.err }

// chanSubscriber serves one buffered channel the test writes to directly.
type chanSubscriber struct {
	messages     chan *message.Message
	subscribeErr error
	closeErr     error

	mu     sync.Mutex
	closed bool
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{messages: make(chan *message.Message, 10)}
}

func (s *chanSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	return s.messages, nil
}

func (s *chanSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed && s.messages != nil {
		close(s.messages)
	}

	s.closed = true

	return s.closeErr
}

func (s *chanSubscriber) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
