package location

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrFeedClosed     = errors.New("location feed closed")
	ErrFeedSubscribed = errors.New("location feed already subscribed")
)

// Feed is a Provider fed by Push. It serves one subscriber.
type Feed struct {
	ch   chan Event
	done chan struct{}

	mu         sync.Mutex
	subscribed bool
	closeOnce  sync.Once
}

// NewFeed creates a feed buffering up to size pushed events.
func NewFeed(size int) *Feed {
	if size < 1 {
		size = 1
	}
	return &Feed{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Events implements Provider.
func (f *Feed) Events(ctx context.Context) (<-chan Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isClosed() {
		return nil, ErrFeedClosed
	}
	if f.subscribed {
		return nil, ErrFeedSubscribed
	}
	f.subscribed = true
	return f.ch, nil
}

// Push delivers evt, blocking while the buffer is full.
func (f *Feed) Push(ctx context.Context, evt Event) error {
	select {
	case <-f.done:
		return ErrFeedClosed
	default:
	}
	select {
	case f.ch <- evt:
		return nil
	case <-f.done:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further pushes. Buffered events are abandoned.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *Feed) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
