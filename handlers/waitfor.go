package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/stream"
)

const (
	// DefaultWaitTimeout is used when the caller does not name a timeout.
	DefaultWaitTimeout = 10 * time.Second
	// MaxWaitTimeout caps how long a single wait request may block.
	MaxWaitTimeout = 60 * time.Second
)

// ErrTimeout is returned by Wait when the target status is not reached in time.
var ErrTimeout = errors.New("wait timeout exceeded")

// WaitResult is the response of a wait request
type WaitResult struct {
	OrderID int64              `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
	Reached bool               `json:"reached"`
}

// WaitForHandler blocks a request until an order reaches a target status
type WaitForHandler struct {
	service service.OrderService
}

// NewWaitForHandler creates a new wait-for handler
func NewWaitForHandler(svc service.OrderService) *WaitForHandler {
	return &WaitForHandler{service: svc}
}

// Wait returns once the order's status reaches or passes target, or when
// timeout elapses. On timeout the last known status is returned with ErrTimeout.
func (h *WaitForHandler) Wait(ctx context.Context, orderID int64, target models.OrderStatus, timeout time.Duration) (models.OrderStatus, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	timeout = min(timeout, MaxWaitTimeout)

	// Resolves unknown orders to a not found error before subscribing.
	order, err := h.service.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if statusReached(order.Status, target) {
		return order.Status, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := h.service.Subscribe(ctx, orderID, service.SubscribeOptions{
		Snapshot:  true,
		KeepAlive: timeout,
	})
	if err != nil {
		return order.Status, err
	}
	defer session.Close()

	lastStatus := order.Status
	for {
		line, err := session.Next(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return lastStatus, ErrTimeout
		case err != nil:
			return lastStatus, err
		}

		if line.Kind != stream.LineData {
			continue
		}
		lastStatus = models.OrderStatus(line.Event.Status)
		if statusReached(lastStatus, target) {
			return lastStatus, nil
		}
	}
}

// statusReached checks if the current status meets or exceeds the target status
func statusReached(current, target models.OrderStatus) bool {
	return current.Rank() >= target.Rank()
}

// ParseWaitQuery validates the status and timeout (in seconds) query parameters.
func ParseWaitQuery(status, timeout string) (models.OrderStatus, time.Duration, error) {
	target := models.OrderStatus(status)
	if !target.IsValid() {
		return "", 0, apierrors.Unprocessable(apierrors.FieldError{Field: "status", Message: "must be a known order status"})
	}

	if timeout == "" {
		return target, DefaultWaitTimeout, nil
	}
	secs, err := strconv.Atoi(timeout)
	if err != nil || secs <= 0 {
		return "", 0, apierrors.Unprocessable(apierrors.FieldError{Field: "timeout", Message: "must be a positive number of seconds"})
	}
	return target, time.Duration(secs) * time.Second, nil
}

// Result converts the outcome of Wait into a response body.
// ErrTimeout is not an error for the caller; it yields Reached=false.
func Result(orderID int64, status models.OrderStatus, err error) (*WaitResult, error) {
	switch {
	case errors.Is(err, ErrTimeout):
		return &WaitResult{OrderID: orderID, Status: status, Reached: false}, nil
	case err != nil:
		return nil, err
	}
	return &WaitResult{OrderID: orderID, Status: status, Reached: true}, nil
}
