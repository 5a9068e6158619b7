package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/models"
)

const (
	metricPublished   = "orders.events.published"
	metricDelivered   = "orders.events.delivered"
	metricDropped     = "orders.events.dropped"
	metricSubscribers = "orders.subscribers.active"
)

// Ensure BusMetrics implements events.Observer
var _ events.Observer = (*BusMetrics)(nil)

// BusMetrics records event bus activity as OpenTelemetry instruments.
type BusMetrics struct {
	published   metric.Int64Counter
	delivered   metric.Int64Counter
	dropped     metric.Int64Counter
	subscribers metric.Int64UpDownCounter
}

// NewBusMetrics creates the bus instruments on meter.
func NewBusMetrics(meter metric.Meter) (*BusMetrics, error) {
	published, err := meter.Int64Counter(metricPublished,
		metric.WithDescription("Number of status events published"),
	)
	if err != nil {
		return nil, err
	}

	delivered, err := meter.Int64Counter(metricDelivered,
		metric.WithDescription("Number of status events enqueued to a subscriber"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(metricDropped,
		metric.WithDescription("Number of status events dropped because a subscriber was full"),
	)
	if err != nil {
		return nil, err
	}

	subscribers, err := meter.Int64UpDownCounter(metricSubscribers,
		metric.WithDescription("Number of open status streams"),
	)
	if err != nil {
		return nil, err
	}

	return &BusMetrics{
		published:   published,
		delivered:   delivered,
		dropped:     dropped,
		subscribers: subscribers,
	}, nil
}

func (m *BusMetrics) Published(ctx context.Context, ev *models.StatusEvent, _ int) {
	m.published.Add(ctx, 1, metric.WithAttributes(attribute.String("status", ev.Status)))
}

func (m *BusMetrics) Delivered(ctx context.Context, _ *models.StatusEvent, d events.Delivery) {
	switch d {
	case events.DeliveryOK:
		m.delivered.Add(ctx, 1)
	case events.DeliveryDropped:
		m.dropped.Add(ctx, 1)
	}
}

func (m *BusMetrics) Registered(ctx context.Context) {
	m.subscribers.Add(ctx, 1)
}

func (m *BusMetrics) Deregistered(ctx context.Context) {
	m.subscribers.Add(ctx, -1)
}
