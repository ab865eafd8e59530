// Package publisher emits audit events to a store, synchronously by default
// or through a buffered background drain when configured.
package publisher

import (
	"context"
	"errors"
	"sync"
	"time"

	"registrar/internal/audit"
)

// ErrBufferFull is returned when an async publisher cannot accept another
// event. Callers treat audit as best-effort and must not fail the request.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher writes audit events to its store. In sync mode Emit persists
// before returning; with WithAsyncBuffer, Emit enqueues and a background
// goroutine drains the buffer until Close.
type Publisher struct {
	store     audit.Store
	inbox     chan audit.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given
// buffer capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// drain persists queued events until the inbox closes. Append failures are
// dropped: the trail is best-effort and must never block registrations.
func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		_ = p.store.Append(context.Background(), event)
	}
}

// Emit records an event. A zero Timestamp is stamped with the current time.
// In async mode a full buffer returns ErrBufferFull instead of blocking.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns the events recorded for a student.
func (p *Publisher) List(ctx context.Context, studentID string) ([]audit.Event, error) {
	return p.store.ListByStudentID(ctx, studentID)
}

// Close stops the background drain after flushing queued events. Safe to
// call more than once; a no-op in sync mode.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.inbox)
		<-p.done
	})
}
