// Package service defines the order management service interface.
package service

import (
	"context"
	"time"

	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/stream"
)

// SubscribeOptions tunes a status stream. Zero values select the defaults.
type SubscribeOptions struct {
	// Snapshot emits the order's current status as the first line.
	Snapshot bool

	// KeepAlive is the idle interval before a keep-alive line is emitted.
	KeepAlive time.Duration

	// BufferSize is the capacity of the session's event channel.
	BufferSize int
}

// OrderService defines the operations exposed by the HTTP layer.
// The embedded implementation serves them in-process.
type OrderService interface {
	// ListMenu returns the whole menu catalog.
	ListMenu(ctx context.Context) ([]*models.MenuItem, error)

	// CreateMenuItem validates and stores a new menu item.
	CreateMenuItem(ctx context.Context, item *models.MenuItemCreate) (*models.MenuItem, error)

	// ListOrders returns every order with its items.
	ListOrders(ctx context.Context) ([]*models.Order, error)

	// CreateOrder validates and stores a new order with status "received".
	CreateOrder(ctx context.Context, order *models.OrderCreate) (*models.Order, error)

	// GetOrder returns a single order or a not found error.
	GetOrder(ctx context.Context, id int64) (*models.Order, error)

	// UpdateOrder applies a status change and notifies subscribers once it has committed.
	UpdateOrder(ctx context.Context, id int64, update *models.OrderUpdate) (*models.Order, error)

	// Subscribe opens a status stream for one order.
	// The caller owns the returned session and must close it.
	Subscribe(ctx context.Context, orderID int64, opts SubscribeOptions) (*stream.Session, error)
}
