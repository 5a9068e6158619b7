// Package models holds the menu, order and status event types shared by the
// store, service and transport layers.
package models

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusReceived       OrderStatus = "received"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
)

// OrderStatuses lists every known status in lifecycle order
func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusReceived, StatusPreparing, StatusOutForDelivery, StatusDelivered}
}

// IsValid reports whether s is one of the known order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	default:
		return false
	}
}

// Rank returns the position of s in the lifecycle, or -1 for an unknown status.
func (s OrderStatus) Rank() int {
	for i, known := range OrderStatuses() {
		if s == known {
			return i
		}
	}
	return -1
}

// Order is a customer order with its line items
type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	Address      string      `json:"address"`
	Phone        string      `json:"phone"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items"`
}

// OrderItem is a single line of an order, joined with its menu item
type OrderItem struct {
	ID         int64    `json:"id"`
	MenuItemID int64    `json:"menu_item_id"`
	Quantity   int      `json:"quantity"`
	MenuItem   MenuItem `json:"menu_item"`
}

// OrderCreate is the request body for creating an order
type OrderCreate struct {
	CustomerName string            `json:"customer_name"`
	Address      string            `json:"address"`
	Phone        string            `json:"phone"`
	Items        []OrderItemCreate `json:"items"`
}

// OrderItemCreate is a requested order line
type OrderItemCreate struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// OrderUpdate is the request body for patching an order.
// A nil Status leaves the order unchanged.
type OrderUpdate struct {
	Status *OrderStatus `json:"status"`
}
