package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidStatusEvent is returned when a payload does not describe a status event.
var ErrInvalidStatusEvent = errors.New("invalid status event")

// StatusEvent is a single order status transition. It is never persisted.
type StatusEvent struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// NewStatusEvent creates a status event for the given order.
func NewStatusEvent(orderID int64, status string) *StatusEvent {
	return &StatusEvent{OrderID: orderID, Status: status}
}

// Payload renders the event as the JSON object carried on SSE data lines.
// The separators match the historical wire format: {"order_id": 42, "status": "preparing"}.
func (e *StatusEvent) Payload() []byte {
	status, _ := json.Marshal(e.Status)
	return fmt.Appendf(nil, `{"order_id": %d, "status": %s}`, e.OrderID, status)
}

// ParseStatusEvent decodes an SSE data payload back into a StatusEvent.
func ParseStatusEvent(data []byte) (*StatusEvent, error) {
	var raw struct {
		OrderID *int64  `json:"order_id"`
		Status  *string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatusEvent, err)
	}
	if raw.OrderID == nil || raw.Status == nil {
		return nil, fmt.Errorf("%w: missing order_id or status", ErrInvalidStatusEvent)
	}
	return &StatusEvent{OrderID: *raw.OrderID, Status: *raw.Status}, nil
}
