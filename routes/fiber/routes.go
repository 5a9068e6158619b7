// Package fiber provides Fiber route registration for the order API.
package fiber

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/handlers"
	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/store"
	"github.com/syp1xd/food-ordering-app/stream"
)

// Config holds configuration for the routes.
type Config struct {
	Service service.OrderService
	Store   store.Store // For health checks
	Logger  *slog.Logger

	// BaseContext bounds every status stream; cancel it on shutdown.
	BaseContext context.Context
}

// Routes handles HTTP routes for the order API.
type Routes struct {
	service service.OrderService
	store   store.Store
	waitFor *handlers.WaitForHandler
	logger  *slog.Logger
	baseCtx context.Context
}

// NewRoutes creates a new Routes instance.
func NewRoutes(cfg Config) *Routes {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Routes{
		service: cfg.Service,
		store:   cfg.Store,
		waitFor: handlers.NewWaitForHandler(cfg.Service),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Register registers the /api routes on the given router.
func (r *Routes) Register(router fiber.Router) {
	api := router.Group("/api")

	api.Get("/menu", r.handleListMenu)
	api.Post("/menu", r.handleCreateMenuItem)

	api.Get("/orders", r.handleListOrders)
	api.Post("/orders", r.handleCreateOrder)
	api.Get("/orders/:id", r.handleGetOrder)
	api.Patch("/orders/:id", r.handleUpdateOrder)
	api.Get("/orders/:id/wait", r.handleWaitOrder)

	api.Get("/sse/orders/:id", r.handleOrderSSE)
}

// HandleGetRoot returns the API banner
func (r *Routes) HandleGetRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Order Management API"})
}

// HandleGetHealth returns the health status
func (r *Routes) HandleGetHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := r.store.Ping(ctx); err != nil {
		return c.Status(http.StatusServiceUnavailable).SendString("Database connection failed")
	}

	return c.SendString("OK")
}

func (r *Routes) handleListMenu(c *fiber.Ctx) error {
	items, err := r.service.ListMenu(c.UserContext())
	if err != nil {
		return r.writeError(c, err)
	}
	return c.JSON(items)
}

func (r *Routes) handleCreateMenuItem(c *fiber.Ctx) error {
	var req models.MenuItemCreate
	if err := decodeBody(c, &req); err != nil {
		return r.writeError(c, err)
	}

	item, err := r.service.CreateMenuItem(c.UserContext(), &req)
	if err != nil {
		return r.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(item)
}

func (r *Routes) handleListOrders(c *fiber.Ctx) error {
	orders, err := r.service.ListOrders(c.UserContext())
	if err != nil {
		return r.writeError(c, err)
	}
	return c.JSON(orders)
}

func (r *Routes) handleCreateOrder(c *fiber.Ctx) error {
	var req models.OrderCreate
	if err := decodeBody(c, &req); err != nil {
		return r.writeError(c, err)
	}

	order, err := r.service.CreateOrder(c.UserContext(), &req)
	if err != nil {
		return r.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(order)
}

func (r *Routes) handleGetOrder(c *fiber.Ctx) error {
	id, err := parseOrderID(c.Params("id"))
	if err != nil {
		return r.writeError(c, err)
	}

	order, err := r.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return r.writeError(c, err)
	}
	return c.JSON(order)
}

func (r *Routes) handleUpdateOrder(c *fiber.Ctx) error {
	id, err := parseOrderID(c.Params("id"))
	if err != nil {
		return r.writeError(c, err)
	}

	var req models.OrderUpdate
	if err := decodeBody(c, &req); err != nil {
		return r.writeError(c, err)
	}

	order, err := r.service.UpdateOrder(c.UserContext(), id, &req)
	if err != nil {
		return r.writeError(c, err)
	}
	return c.JSON(order)
}

func (r *Routes) handleWaitOrder(c *fiber.Ctx) error {
	id, err := parseOrderID(c.Params("id"))
	if err != nil {
		return r.writeError(c, err)
	}

	target, timeout, err := handlers.ParseWaitQuery(c.Query("status"), c.Query("timeout"))
	if err != nil {
		return r.writeError(c, err)
	}

	status, err := r.waitFor.Wait(c.UserContext(), id, target, timeout)
	result, err := handlers.Result(id, status, err)
	if err != nil {
		return r.writeError(c, err)
	}
	return c.JSON(result)
}

// handleOrderSSE streams status changes for one order. The session lives
// inside the stream writer so it is always closed by Serve; a failed flush
// is how fasthttp reports a client disconnect.
func (r *Routes) handleOrderSSE(c *fiber.Ctx) error {
	orderID, err := parseOrderID(c.Params("id"))
	if err != nil {
		return r.writeError(c, err)
	}
	opts := service.SubscribeOptions{Snapshot: c.QueryBool("snapshot")}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// Send headers before the first frame so clients see the stream open
	c.Context().Response.ImmediateHeaderFlush = true

	ctx := r.baseCtx
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		session, err := r.service.Subscribe(ctx, orderID, opts)
		if err != nil {
			r.logger.Warn("failed to open status stream",
				slog.Int64("order_id", orderID),
				slog.String("error", err.Error()))
			return
		}

		if err := session.Serve(ctx, w); err != nil && !errors.Is(err, stream.ErrClientGone) {
			r.logger.Error("status stream failed",
				slog.Int64("order_id", orderID),
				slog.String("error", err.Error()))
		}
	}))

	return nil
}

func (r *Routes) writeError(c *fiber.Ctx, err error) error {
	status, body := apierrors.Resolve(err)
	if status >= apierrors.StatusInternal {
		r.logger.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return c.Status(int(status)).JSON(body)
}

func decodeBody(c *fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return apierrors.Unprocessable(apierrors.FieldError{Field: "body", Message: "invalid JSON: " + err.Error()})
	}
	return nil
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierrors.Unprocessable(apierrors.FieldError{Field: "order_id", Message: "must be an integer"})
	}
	return id, nil
}
