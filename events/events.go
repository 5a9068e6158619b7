// Package events provides the in-process status event bus used to fan out
// order status changes to streaming subscribers.
package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/syp1xd/food-ordering-app/models"
)

// Handle identifies a single registration on a Bus.
type Handle struct {
	id uuid.UUID
}

// NewHandle returns a fresh, unique handle.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// String returns the handle's identifier.
func (h Handle) String() string {
	return h.id.String()
}

// IsZero reports whether h was never issued by a bus.
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

// Delivery is the outcome of one enqueue attempt during a publish.
type Delivery int

const (
	// DeliveryOK means the event was placed on the subscriber's channel.
	DeliveryOK Delivery = iota
	// DeliveryDropped means the subscriber's channel was full and the event was skipped.
	DeliveryDropped
)

func (d Delivery) String() string {
	switch d {
	case DeliveryOK:
		return "ok"
	case DeliveryDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Observer receives bus activity for metrics and logging.
// Implementations must not block.
type Observer interface {
	Published(ctx context.Context, event *models.StatusEvent, subscribers int)
	Delivered(ctx context.Context, event *models.StatusEvent, result Delivery)
	Registered(ctx context.Context)
	Deregistered(ctx context.Context)
}

// Bus broadcasts status events to every registered subscriber channel.
// It does not filter by order; subscribers do that themselves.
type Bus interface {
	// Register adds ch to the registry. The caller keeps ownership of ch;
	// the bus only ever sends on it.
	Register(ch chan<- *models.StatusEvent) Handle

	// Deregister removes the registration for h. Unknown or already removed
	// handles are ignored.
	Deregister(h Handle)

	// Publish offers the event to every registered channel without blocking.
	Publish(ctx context.Context, event *models.StatusEvent)

	// Subscribers returns the number of registered channels.
	Subscribers() int

	// Done is closed when the bus shuts down.
	Done() <-chan struct{}

	// Close shuts the bus down and drops every registration.
	Close() error
}

// NopObserver is an Observer that ignores everything.
type NopObserver struct{}

func (NopObserver) Published(context.Context, *models.StatusEvent, int) {}
func (NopObserver) Delivered(context.Context, *models.StatusEvent, Delivery) {}
func (NopObserver) Registered(context.Context) {}
func (NopObserver) Deregistered(context.Context) {}
