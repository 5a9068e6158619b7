// Package sqlite implements store.Store on top of a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/store"
	_ "modernc.org/sqlite"
)

const (
	// SQLite pragmas for better concurrency
	sqlitePragmas = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;
PRAGMA synchronous=NORMAL;
PRAGMA foreign_keys=ON;
`

	createMenuItemsTable = `
CREATE TABLE IF NOT EXISTS menu_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	price REAL NOT NULL,
	image_url TEXT
);
`

	createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_name TEXT NOT NULL,
	address TEXT NOT NULL,
	phone TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'received'
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

	createOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	menu_item_id INTEGER NOT NULL REFERENCES menu_items(id),
	quantity INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

	selectOrders = `
SELECT o.id, o.customer_name, o.address, o.phone, o.status,
       oi.id, oi.menu_item_id, oi.quantity,
       mi.name, mi.description, mi.price, mi.image_url
FROM orders o
LEFT JOIN order_items oi ON o.id = oi.order_id
LEFT JOIN menu_items mi ON oi.menu_item_id = mi.id
`
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and ensures the schema exists
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps the pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqlitePragmas); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for name, schema := range map[string]string{
		"menu_items":  createMenuItemsTable,
		"orders":      createOrdersTable,
		"order_items": createOrderItemsTable,
	} {
		if err := initializeSchema(db, schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize %s schema: %w", name, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItemCreate) (*models.MenuItem, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO menu_items (name, description, price, image_url) VALUES (?, ?, ?, ?)`,
		item.Name,
		nullString(item.Description),
		item.Price,
		nullString(item.ImageURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read menu item id: %w", err)
	}

	return s.GetMenuItem(ctx, id)
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image_url FROM menu_items WHERE id = ?`, id)

	item, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]*models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, image_url FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}

	return items, nil
}

func (s *Store) CountMenuItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return n, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.OrderCreate) (*models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range order.Items {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM menu_items WHERE id = ?`, item.MenuItemID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", store.ErrMenuItemNotFound, item.MenuItemID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check menu item: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_name, address, phone, status) VALUES (?, ?, ?, ?)`,
		order.CustomerName, order.Address, order.Phone, models.StatusReceived)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read order id: %w", err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, menu_item_id, quantity) VALUES (?, ?, ?)`,
			orderID, item.MenuItemID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, selectOrders+`WHERE o.id = ? ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

func (s *Store) ListOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, selectOrders+`ORDER BY o.id, oi.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return s.GetOrder(ctx, id)
}

func (s *Store) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.OrderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[models.OrderStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order counts: %w", err)
	}

	return counts, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Helper functions

func initializeSchema(db *sql.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row scanner) (*models.MenuItem, error) {
	var item models.MenuItem
	var description, imageURL sql.NullString

	if err := row.Scan(&item.ID, &item.Name, &description, &item.Price, &imageURL); err != nil {
		return nil, err
	}
	item.Description = stringPtr(description)
	item.ImageURL = stringPtr(imageURL)

	return &item, nil
}

// scanOrders folds the joined order/item rows into orders, preserving row order.
func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	byID := make(map[int64]*models.Order)

	for rows.Next() {
		var o models.Order
		var status string
		var itemID, menuItemID, quantity sql.NullInt64
		var menuName, menuDescription, menuImageURL sql.NullString
		var menuPrice sql.NullFloat64

		if err := rows.Scan(
			&o.ID, &o.CustomerName, &o.Address, &o.Phone, &status,
			&itemID, &menuItemID, &quantity,
			&menuName, &menuDescription, &menuPrice, &menuImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order, ok := byID[o.ID]
		if !ok {
			o.Status = models.OrderStatus(status)
			o.Items = make([]models.OrderItem, 0)
			order = &o
			byID[o.ID] = order
			orders = append(orders, order)
		}

		if !itemID.Valid {
			continue
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:         itemID.Int64,
			MenuItemID: menuItemID.Int64,
			Quantity:   int(quantity.Int64),
			MenuItem: models.MenuItem{
				ID:          menuItemID.Int64,
				Name:        menuName.String,
				Description: stringPtr(menuDescription),
				Price:       menuPrice.Float64,
				ImageURL:    stringPtr(menuImageURL),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
