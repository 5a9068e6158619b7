// Package validator provides request validation for menu items and orders.
package validator

import (
	"fmt"
	"math"
	"strings"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/models"
)

const (
	// DefaultMaxOrderItems bounds the number of lines in a single order.
	DefaultMaxOrderItems = 50
	// DefaultMaxQuantity bounds the quantity of a single order line.
	DefaultMaxQuantity = 100
	maxTextLength      = 255
)

// Policy defines validation limits
type Policy struct {
	MaxOrderItems int
	MaxQuantity   int
}

// Validator checks request bodies before they reach the store
type Validator struct {
	policy *Policy
}

// NewValidator creates a new request validator with policy
func NewValidator(policy *Policy) *Validator {
	if policy == nil {
		policy = &Policy{}
	}
	if policy.MaxOrderItems == 0 {
		policy.MaxOrderItems = DefaultMaxOrderItems
	}
	if policy.MaxQuantity == 0 {
		policy.MaxQuantity = DefaultMaxQuantity
	}
	return &Validator{policy: policy}
}

// ValidateMenuItem checks that a menu item has a name and a positive price
func (v *Validator) ValidateMenuItem(item *models.MenuItemCreate) error {
	if item == nil {
		return apierrors.Unprocessable(apierrors.FieldError{Field: "body", Message: "is required"})
	}

	var fields []apierrors.FieldError
	fields = checkText(fields, "name", item.Name)

	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price <= 0 {
		fields = append(fields, apierrors.FieldError{Field: "price", Message: "must be greater than 0"})
	}

	return toError(fields)
}

// ValidateOrder checks customer details and every requested line
func (v *Validator) ValidateOrder(order *models.OrderCreate) error {
	if order == nil {
		return apierrors.Unprocessable(apierrors.FieldError{Field: "body", Message: "is required"})
	}

	var fields []apierrors.FieldError
	fields = checkText(fields, "customer_name", order.CustomerName)
	fields = checkText(fields, "address", order.Address)
	fields = checkText(fields, "phone", order.Phone)

	switch {
	case len(order.Items) == 0:
		fields = append(fields, apierrors.FieldError{Field: "items", Message: "must contain at least one item"})
	case len(order.Items) > v.policy.MaxOrderItems:
		fields = append(fields, apierrors.FieldError{
			Field:   "items",
			Message: fmt.Sprintf("must contain at most %d items", v.policy.MaxOrderItems),
		})
	}

	for i, item := range order.Items {
		if item.MenuItemID <= 0 {
			fields = append(fields, apierrors.FieldError{
				Field:   fmt.Sprintf("items[%d].menu_item_id", i),
				Message: "must be a positive id",
			})
		}
		if item.Quantity <= 0 || item.Quantity > v.policy.MaxQuantity {
			fields = append(fields, apierrors.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("must be between 1 and %d", v.policy.MaxQuantity),
			})
		}
	}

	return toError(fields)
}

// ValidateOrderUpdate checks that a requested status, when present, is known
func (v *Validator) ValidateOrderUpdate(update *models.OrderUpdate) error {
	if update == nil || update.Status == nil {
		return nil
	}
	if !update.Status.IsValid() {
		return apierrors.Unprocessable(apierrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of %s", joinStatuses()),
		})
	}
	return nil
}

func checkText(fields []apierrors.FieldError, name, value string) []apierrors.FieldError {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return append(fields, apierrors.FieldError{Field: name, Message: "is required"})
	case len(value) > maxTextLength:
		return append(fields, apierrors.FieldError{
			Field:   name,
			Message: fmt.Sprintf("must be at most %d characters", maxTextLength),
		})
	}
	return fields
}

func toError(fields []apierrors.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return apierrors.Unprocessable(fields...)
}

func joinStatuses() string {
	statuses := models.OrderStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
