// Package embedded provides an in-process implementation of the OrderService interface.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/store"
	"github.com/syp1xd/food-ordering-app/stream"
	"github.com/syp1xd/food-ordering-app/validator"
)

const tracerName = "github.com/syp1xd/food-ordering-app/service/embedded"

// Ensure Embedded implements service.OrderService
var _ service.OrderService = (*Embedded)(nil)

// Static errors for embedded service.
var (
	errStoreRequired     = errors.New("store is required")
	errBusRequired       = errors.New("event bus is required")
	errValidatorRequired = errors.New("validator is required")
)

// Config holds configuration for the embedded service.
type Config struct {
	Store     store.Store
	Bus       events.Bus
	Validator *validator.Validator
	Logger    *slog.Logger
	Tracer    trace.Tracer

	// Stream defaults applied when SubscribeOptions leaves them unset.
	Stream service.SubscribeOptions
}

// Embedded is an in-process implementation of OrderService.
type Embedded struct {
	store     store.Store
	bus       events.Bus
	validator *validator.Validator
	logger    *slog.Logger
	tracer    trace.Tracer
	stream    service.SubscribeOptions
}

// New creates a new Embedded service instance.
func New(cfg Config) (*Embedded, error) {
	if cfg.Store == nil {
		return nil, errStoreRequired
	}
	if cfg.Bus == nil {
		return nil, errBusRequired
	}
	if cfg.Validator == nil {
		return nil, errValidatorRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}

	return &Embedded{
		store:     cfg.Store,
		bus:       cfg.Bus,
		validator: cfg.Validator,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		stream:    cfg.Stream,
	}, nil
}

// ListMenu returns the whole menu catalog.
func (e *Embedded) ListMenu(ctx context.Context) (items []*models.MenuItem, err error) {
	ctx, span := e.tracer.Start(ctx, "menu.list")
	defer func() { endSpan(span, err) }()

	items, err = e.store.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	span.SetAttributes(attribute.Int("menu.items", len(items)))
	return items, nil
}

// CreateMenuItem validates and stores a new menu item.
func (e *Embedded) CreateMenuItem(ctx context.Context, in *models.MenuItemCreate) (item *models.MenuItem, err error) {
	ctx, span := e.tracer.Start(ctx, "menu.create")
	defer func() { endSpan(span, err) }()

	if err = e.validator.ValidateMenuItem(in); err != nil {
		return nil, err
	}

	item, err = e.store.CreateMenuItem(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	e.logger.Info("menu item created", slog.Int64("id", item.ID), slog.String("name", item.Name))
	return item, nil
}

// ListOrders returns every order with its items.
func (e *Embedded) ListOrders(ctx context.Context) (orders []*models.Order, err error) {
	ctx, span := e.tracer.Start(ctx, "orders.list")
	defer func() { endSpan(span, err) }()

	orders, err = e.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

// CreateOrder validates and stores a new order with status "received".
func (e *Embedded) CreateOrder(ctx context.Context, in *models.OrderCreate) (order *models.Order, err error) {
	ctx, span := e.tracer.Start(ctx, "orders.create")
	defer func() { endSpan(span, err) }()

	if err = e.validator.ValidateOrder(in); err != nil {
		return nil, err
	}

	order, err = e.store.CreateOrder(ctx, in)
	if errors.Is(err, store.ErrMenuItemNotFound) {
		return nil, apierrors.BadRequest(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	e.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.Int("items", len(order.Items)),
	)
	return order, nil
}

// GetOrder returns a single order or a not found error.
func (e *Embedded) GetOrder(ctx context.Context, id int64) (order *models.Order, err error) {
	ctx, span := e.tracer.Start(ctx, "orders.get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer func() { endSpan(span, err) }()

	order, err = e.store.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apierrors.NotFound("Order not found")
	}
	return order, nil
}

// UpdateOrder applies a status change and publishes it after the store has committed.
// An update without a status returns the order unchanged and publishes nothing.
func (e *Embedded) UpdateOrder(ctx context.Context, id int64, update *models.OrderUpdate) (order *models.Order, err error) {
	ctx, span := e.tracer.Start(ctx, "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer func() { endSpan(span, err) }()

	if err = e.validator.ValidateOrderUpdate(update); err != nil {
		return nil, err
	}

	if update == nil || update.Status == nil {
		return e.GetOrder(ctx, id)
	}

	status := *update.Status
	order, err = e.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, apierrors.NotFound("Order not found")
	}

	span.SetAttributes(attribute.String("order.status", string(status)))
	e.logger.Info("order status updated",
		slog.Int64("order_id", id),
		slog.String("status", string(status)),
	)

	// The returned row may already carry a concurrent update; publish what this call wrote
	e.bus.Publish(ctx, models.NewStatusEvent(id, string(status)))
	return order, nil
}

// Subscribe opens a status stream for one order. The session is registered
// before the snapshot is read so no committed change can fall between them.
func (e *Embedded) Subscribe(ctx context.Context, orderID int64, opts service.SubscribeOptions) (*stream.Session, error) {
	ctx, span := e.tracer.Start(ctx, "orders.subscribe", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Bool("stream.snapshot", opts.Snapshot),
	))
	defer span.End()

	select {
	case <-e.bus.Done():
		span.SetStatus(codes.Error, stream.ErrBusClosed.Error())
		return nil, apierrors.NewAPIError(stream.ErrBusClosed, apierrors.StatusUnavailable)
	default:
	}

	keepAlive := opts.KeepAlive
	if keepAlive <= 0 {
		keepAlive = e.stream.KeepAlive
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = e.stream.BufferSize
	}

	session := stream.Open(e.bus, orderID,
		stream.WithKeepAlive(keepAlive),
		stream.WithBufferSize(bufferSize),
		stream.WithLogger(e.logger),
	)

	if !opts.Snapshot && !e.stream.Snapshot {
		return session, nil
	}

	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		session.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load order snapshot: %w", err)
	}
	if order != nil {
		session.Prime(string(order.Status))
	}

	return session, nil
}

// Seed inserts items only when the menu is empty. It reports how many were inserted.
func (e *Embedded) Seed(ctx context.Context, items []*models.MenuItemCreate) (int, error) {
	n, err := e.store.CountMenuItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	if n > 0 {
		e.logger.Info("menu already seeded, skipping", slog.Int("items", n))
		return 0, nil
	}

	for _, item := range items {
		if _, err := e.CreateMenuItem(ctx, item); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", item.Name, err)
		}
	}

	e.logger.Info("menu seeded", slog.Int("items", len(items)))
	return len(items), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
