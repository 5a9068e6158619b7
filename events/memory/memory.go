// Package memory provides an in-process events.Bus backed by Go channels.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/models"
)

// Ensure InMemoryBus implements events.Bus
var _ events.Bus = (*InMemoryBus)(nil)

// InMemoryBus implements events.Bus using a registry of subscriber channels
type InMemoryBus struct {
	subscribers map[events.Handle]chan<- *models.StatusEvent
	mu          sync.RWMutex
	closed      bool
	done        chan struct{}
	observer    events.Observer
	logger      *slog.Logger
}

// Option configures an InMemoryBus
type Option func(*InMemoryBus)

// WithObserver reports publish and registration activity to o.
func WithObserver(o events.Observer) Option {
	return func(b *InMemoryBus) {
		if o != nil {
			b.observer = o
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *InMemoryBus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewInMemoryBus creates a new in-memory event bus
func NewInMemoryBus(opts ...Option) *InMemoryBus {
	b := &InMemoryBus{
		subscribers: make(map[events.Handle]chan<- *models.StatusEvent),
		done:        make(chan struct{}),
		observer:    events.NopObserver{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a subscriber channel to the registry
func (b *InMemoryBus) Register(ch chan<- *models.StatusEvent) events.Handle {
	h := events.NewHandle()

	b.mu.Lock()
	defer b.mu.Unlock()

	// A closed bus hands out a handle that nothing will ever be sent on;
	// the caller notices shutdown through Done.
	if b.closed {
		return h
	}

	b.subscribers[h] = ch
	b.observer.Registered(context.Background())

	return h
}

// Deregister removes a subscriber channel. Repeated calls are no-ops.
func (b *InMemoryBus) Deregister(h events.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[h]; !ok {
		return
	}
	delete(b.subscribers, h)
	b.observer.Deregistered(context.Background())
}

// Publish sends a status event to all subscribers
func (b *InMemoryBus) Publish(ctx context.Context, event *models.StatusEvent) {
	if event == nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	b.logger.Debug("publishing status event",
		slog.Int64("order_id", event.OrderID),
		slog.String("status", event.Status),
		slog.Int("subscribers", len(b.subscribers)))
	b.observer.Published(ctx, event, len(b.subscribers))

	for h, sub := range b.subscribers {
		select {
		case sub <- event:
			b.observer.Delivered(ctx, event, events.DeliveryOK)
		default:
			// Subscriber is slow, skip this update to prevent blocking
			b.observer.Delivered(ctx, event, events.DeliveryDropped)
			b.logger.Debug("dropped status event for slow subscriber",
				slog.String("handle", h.String()),
				slog.Int64("order_id", event.OrderID))
		}
	}
}

// Subscribers returns the number of registered channels
func (b *InMemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Done is closed once the bus has been shut down
func (b *InMemoryBus) Done() <-chan struct{} {
	return b.done
}

// Close drops all registrations and signals shutdown to subscribers
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for h := range b.subscribers {
		delete(b.subscribers, h)
		b.observer.Deregistered(context.Background())
	}
	close(b.done)

	return nil
}
