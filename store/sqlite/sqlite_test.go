package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/store"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func strPtr(s string) *string { return &s }

func seedMenu(t *testing.T, s *Store) []*models.MenuItem {
	t.Helper()
	ctx := t.Context()

	inputs := []*models.MenuItemCreate{
		{Name: "Margherita Pizza", Description: strPtr("Classic"), Price: 12.99},
		{Name: "Cheeseburger", Price: 8.99, ImageURL: strPtr("https://example.com/burger.jpg")},
	}

	items := make([]*models.MenuItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := s.CreateMenuItem(ctx, in)
		if err != nil {
			t.Fatalf("Failed to create menu item: %v", err)
		}
		items = append(items, item)
	}
	return items
}

func TestStore_MenuItems(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()

	items := seedMenu(t, s)
	if items[0].ID == 0 || items[1].ID == items[0].ID {
		t.Fatalf("Expected distinct assigned IDs, got %d and %d", items[0].ID, items[1].ID)
	}
	if items[0].Description == nil || *items[0].Description != "Classic" {
		t.Errorf("Expected description to round trip, got %v", items[0].Description)
	}
	if items[1].Description != nil {
		t.Errorf("Expected nil description, got %q", *items[1].Description)
	}

	got, err := s.GetMenuItem(ctx, items[1].ID)
	if err != nil {
		t.Fatalf("Failed to get menu item: %v", err)
	}
	if got == nil || got.Name != "Cheeseburger" || got.Price != 8.99 {
		t.Errorf("Unexpected menu item: %+v", got)
	}

	missing, err := s.GetMenuItem(ctx, 9999)
	if err != nil {
		t.Fatalf("Expected no error for missing item, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing item, got %+v", missing)
	}

	list, err := s.ListMenuItems(ctx)
	if err != nil {
		t.Fatalf("Failed to list menu items: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 menu items, got %d", len(list))
	}

	n, err := s.CountMenuItems(ctx)
	if err != nil {
		t.Fatalf("Failed to count menu items: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected count 2, got %d", n)
	}
}

func TestStore_ListMenuItemsEmpty(t *testing.T) {
	s := setupTestStore(t)

	list, err := s.ListMenuItems(t.Context())
	if err != nil {
		t.Fatalf("Failed to list menu items: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", list)
	}
}

func TestStore_CreateAndGetOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()
	menu := seedMenu(t, s)

	order, err := s.CreateOrder(ctx, &models.OrderCreate{
		CustomerName: "Ada",
		Address:      "1 Main St",
		Phone:        "555-0100",
		Items: []models.OrderItemCreate{
			{MenuItemID: menu[0].ID, Quantity: 2},
			{MenuItemID: menu[1].ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	if order.Status != models.StatusReceived {
		t.Errorf("Expected status %s, got %s", models.StatusReceived, order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 2 || order.Items[0].MenuItem.Name != "Margherita Pizza" {
		t.Errorf("Unexpected first item: %+v", order.Items[0])
	}

	got, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("Failed to get order: %v", err)
	}
	if got == nil || got.CustomerName != "Ada" || len(got.Items) != 2 {
		t.Errorf("Unexpected order: %+v", got)
	}

	missing, err := s.GetOrder(ctx, 9999)
	if err != nil {
		t.Fatalf("Expected no error for missing order, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing order, got %+v", missing)
	}
}

func TestStore_CreateOrderUnknownMenuItem(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()
	menu := seedMenu(t, s)

	_, err := s.CreateOrder(ctx, &models.OrderCreate{
		CustomerName: "Ada",
		Address:      "1 Main St",
		Phone:        "555-0100",
		Items: []models.OrderItemCreate{
			{MenuItemID: menu[0].ID, Quantity: 1},
			{MenuItemID: 9999, Quantity: 1},
		},
	})
	if !errors.Is(err, store.ErrMenuItemNotFound) {
		t.Fatalf("Expected ErrMenuItemNotFound, got %v", err)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("Failed to list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("Expected rolled back order, got %d orders", len(orders))
	}
}

func TestStore_ListOrders(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()
	menu := seedMenu(t, s)

	for _, name := range []string{"Ada", "Grace"} {
		if _, err := s.CreateOrder(ctx, &models.OrderCreate{
			CustomerName: name,
			Address:      "addr",
			Phone:        "phone",
			Items:        []models.OrderItemCreate{{MenuItemID: menu[0].ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("Failed to create order: %v", err)
		}
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("Failed to list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(orders))
	}
	if orders[0].CustomerName != "Ada" || orders[1].CustomerName != "Grace" {
		t.Errorf("Expected orders in creation order, got %s, %s", orders[0].CustomerName, orders[1].CustomerName)
	}
	for _, o := range orders {
		if len(o.Items) != 1 {
			t.Errorf("Order %d: expected 1 item, got %d", o.ID, len(o.Items))
		}
	}
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := t.Context()
	menu := seedMenu(t, s)

	order, err := s.CreateOrder(ctx, &models.OrderCreate{
		CustomerName: "Ada",
		Address:      "addr",
		Phone:        "phone",
		Items:        []models.OrderItemCreate{{MenuItemID: menu[0].ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	updated, err := s.UpdateOrderStatus(ctx, order.ID, models.StatusPreparing)
	if err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	if updated == nil || updated.Status != models.StatusPreparing {
		t.Fatalf("Expected status %s, got %+v", models.StatusPreparing, updated)
	}
	if len(updated.Items) != 1 {
		t.Errorf("Expected items to be preserved, got %d", len(updated.Items))
	}

	missing, err := s.UpdateOrderStatus(ctx, 9999, models.StatusDelivered)
	if err != nil {
		t.Fatalf("Expected no error for missing order, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing order, got %+v", missing)
	}

	counts, err := s.CountOrdersByStatus(ctx)
	if err != nil {
		t.Fatalf("Failed to count orders: %v", err)
	}
	if counts[models.StatusPreparing] != 1 || counts[models.StatusReceived] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestStore_Ping(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Ping(t.Context()); err != nil {
		t.Errorf("Expected ping to succeed, got %v", err)
	}
}
