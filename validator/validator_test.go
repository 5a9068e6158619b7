package validator

import (
	"errors"
	"testing"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/models"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator(nil)
	if v == nil {
		t.Fatal("expected validator to be created")
	}
	if v.policy.MaxOrderItems != DefaultMaxOrderItems {
		t.Errorf("expected MaxOrderItems=%d, got %d", DefaultMaxOrderItems, v.policy.MaxOrderItems)
	}
	if v.policy.MaxQuantity != DefaultMaxQuantity {
		t.Errorf("expected MaxQuantity=%d, got %d", DefaultMaxQuantity, v.policy.MaxQuantity)
	}
}

func TestNewValidator_CustomPolicy(t *testing.T) {
	v := NewValidator(&Policy{MaxOrderItems: 2, MaxQuantity: 3})
	if v.policy.MaxOrderItems != 2 || v.policy.MaxQuantity != 3 {
		t.Errorf("expected custom policy, got %+v", v.policy)
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	apiErr := apierrors.GetAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != apierrors.StatusUnprocessable {
		t.Fatalf("expected status %d, got %d", apierrors.StatusUnprocessable, apiErr.StatusCode)
	}
	names := make([]string, len(apiErr.Fields))
	for i, f := range apiErr.Fields {
		names[i] = f.Field
	}
	return names
}

func TestValidateMenuItem(t *testing.T) {
	v := NewValidator(nil)

	if err := v.ValidateMenuItem(&models.MenuItemCreate{Name: "Sushi Platter", Price: 15.99}); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}

	err := v.ValidateMenuItem(&models.MenuItemCreate{Name: "  ", Price: 0})
	names := fieldNames(t, err)
	if len(names) != 2 || names[0] != "name" || names[1] != "price" {
		t.Errorf("unexpected fields: %v", names)
	}
	if !errors.Is(err, apierrors.ErrValidation) {
		t.Error("expected ErrValidation in chain")
	}
}

func TestValidateOrder(t *testing.T) {
	v := NewValidator(&Policy{MaxOrderItems: 2, MaxQuantity: 5})

	valid := &models.OrderCreate{
		CustomerName: "Ada",
		Address:      "1 Main St",
		Phone:        "555-0100",
		Items:        []models.OrderItemCreate{{MenuItemID: 1, Quantity: 2}},
	}
	if err := v.ValidateOrder(valid); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}

	tests := []struct {
		name   string
		order  *models.OrderCreate
		fields []string
	}{
		{
			name:   "nil body",
			order:  nil,
			fields: []string{"body"},
		},
		{
			name:   "missing customer fields",
			order:  &models.OrderCreate{Items: valid.Items},
			fields: []string{"customer_name", "address", "phone"},
		},
		{
			name: "no items",
			order: &models.OrderCreate{
				CustomerName: "Ada", Address: "a", Phone: "p",
			},
			fields: []string{"items"},
		},
		{
			name: "too many items",
			order: &models.OrderCreate{
				CustomerName: "Ada", Address: "a", Phone: "p",
				Items: []models.OrderItemCreate{{MenuItemID: 1, Quantity: 1}, {MenuItemID: 2, Quantity: 1}, {MenuItemID: 3, Quantity: 1}},
			},
			fields: []string{"items"},
		},
		{
			name: "bad lines",
			order: &models.OrderCreate{
				CustomerName: "Ada", Address: "a", Phone: "p",
				Items: []models.OrderItemCreate{{MenuItemID: 0, Quantity: 1}, {MenuItemID: 2, Quantity: 6}},
			},
			fields: []string{"items[0].menu_item_id", "items[1].quantity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := fieldNames(t, v.ValidateOrder(tt.order))
			if len(names) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, names)
			}
			for i := range names {
				if names[i] != tt.fields[i] {
					t.Errorf("expected field %q at %d, got %q", tt.fields[i], i, names[i])
				}
			}
		})
	}
}

func TestValidateOrderUpdate(t *testing.T) {
	v := NewValidator(nil)

	if err := v.ValidateOrderUpdate(&models.OrderUpdate{}); err != nil {
		t.Errorf("expected empty update to be valid, got %v", err)
	}

	for _, s := range models.OrderStatuses() {
		status := s
		if err := v.ValidateOrderUpdate(&models.OrderUpdate{Status: &status}); err != nil {
			t.Errorf("expected %s to be valid, got %v", s, err)
		}
	}

	bogus := models.OrderStatus("teleported")
	names := fieldNames(t, v.ValidateOrderUpdate(&models.OrderUpdate{Status: &bogus}))
	if len(names) != 1 || names[0] != "status" {
		t.Errorf("unexpected fields: %v", names)
	}
}
