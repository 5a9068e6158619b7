// Package client provides a REST client for the order management API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/syp1xd/food-ordering-app/models"
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// Client is an HTTP client for the order management REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// SSE state
	sseManager *sseManager
}

// New creates a new REST client.
func New(baseURL string, opts ...Option) *Client {
	// Remove trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	// Initialize SSE manager
	c.sseManager = newSSEManager(c)

	return c
}

// ListMenu returns the menu catalog.
func (c *Client) ListMenu(ctx context.Context) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	if err := c.do(ctx, http.MethodGet, "/api/menu/", nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateMenuItem adds a menu item.
func (c *Client) CreateMenuItem(ctx context.Context, item *models.MenuItemCreate) (*models.MenuItem, error) {
	var created models.MenuItem
	if err := c.do(ctx, http.MethodPost, "/api/menu/", item, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListOrders returns every order.
func (c *Client) ListOrders(ctx context.Context) ([]*models.Order, error) {
	var orders []*models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/", nil, http.StatusOK, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, order *models.OrderCreate) (*models.Order, error) {
	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/", order, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetOrder retrieves a single order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, orderPath(id), nil, http.StatusOK, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus changes an order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := &models.OrderUpdate{Status: &status}
	if err := c.do(ctx, http.MethodPatch, orderPath(id), body, http.StatusOK, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SubscribeOrder streams status events for one order until ctx is done.
// The channel is closed when the subscription ends.
func (c *Client) SubscribeOrder(ctx context.Context, id int64, opts ...SubscribeOption) (<-chan *models.StatusEvent, error) {
	return c.sseManager.subscribe(ctx, id, opts...)
}

// Close closes the client and any active connections.
func (c *Client) Close() error {
	c.sseManager.close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse extracts the detail message from an error response.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	// Try to parse as JSON error
	var errResp struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
		return &Error{StatusCode: resp.StatusCode, Detail: errResp.Detail}
	}

	return &Error{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
}

func orderPath(id int64) string {
	return "/api/orders/" + strconv.FormatInt(id, 10)
}
