// Package store defines persistence interfaces for menu items and orders.
package store

import (
	"context"
	"errors"

	"github.com/syp1xd/food-ordering-app/models"
)

// ErrMenuItemNotFound is returned when an order references a menu item that does not exist.
var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuStore handles menu catalog persistence
type MenuStore interface {
	// CreateMenuItem inserts a menu item and returns it with its assigned ID
	CreateMenuItem(ctx context.Context, item *models.MenuItemCreate) (*models.MenuItem, error)

	// GetMenuItem retrieves a menu item, or nil if it does not exist
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)

	// ListMenuItems retrieves the whole catalog ordered by ID
	ListMenuItems(ctx context.Context) ([]*models.MenuItem, error)

	// CountMenuItems returns the catalog size
	CountMenuItems(ctx context.Context) (int, error)
}

// OrderStore handles order persistence
type OrderStore interface {
	// CreateOrder inserts an order and its items atomically with status "received".
	// Returns ErrMenuItemNotFound if any item references an unknown menu item.
	CreateOrder(ctx context.Context, order *models.OrderCreate) (*models.Order, error)

	// GetOrder retrieves an order with its items, or nil if it does not exist
	GetOrder(ctx context.Context, id int64) (*models.Order, error)

	// ListOrders retrieves all orders with their items ordered by ID
	ListOrders(ctx context.Context) ([]*models.Order, error)

	// UpdateOrderStatus sets an order's status and returns the committed order,
	// or nil if the order does not exist
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)

	// CountOrdersByStatus returns the number of orders in each status
	CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
}

// Store combines all store interfaces
type Store interface {
	MenuStore
	OrderStore

	// Ping checks that the underlying database is reachable
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}
