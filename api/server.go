// Package api provides the Echo implementation of the order HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/handlers"
	"github.com/syp1xd/food-ordering-app/models"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/store"
)

// Config holds the Echo server dependencies
type Config struct {
	Service service.OrderService
	Store   store.Store // For health checks
	Logger  *slog.Logger

	// Dashboard is mounted at /status when set
	Dashboard http.Handler

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server handles HTTP API requests
type Server struct {
	service    service.OrderService
	store      store.Store
	sseHandler *handlers.SSEHandler
	waitFor    *handlers.WaitForHandler
	logger     *slog.Logger
	echo       *echo.Echo
}

// NewServer creates a new API server with all routes registered
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:    cfg.Service,
		store:      cfg.Store,
		sseHandler: handlers.NewSSEHandler(cfg.Service, logger),
		waitFor:    handlers.NewWaitForHandler(cfg.Service),
		logger:     logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	s.echo = e

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", s.handleGetRoot)
	e.GET("/health", s.handleGetHealth)
	if cfg.Dashboard != nil {
		e.GET("/status", echo.WrapHandler(cfg.Dashboard))
	}

	api := e.Group("/api")
	api.GET("/menu", s.handleListMenu)
	api.POST("/menu", s.handleCreateMenuItem)
	api.GET("/orders", s.handleListOrders)
	api.POST("/orders", s.handleCreateOrder)
	api.GET("/orders/:id", s.handleGetOrder)
	api.PATCH("/orders/:id", s.handleUpdateOrder)
	api.GET("/orders/:id/wait", s.handleWaitOrder)
	api.GET("/sse/orders/:id", s.sseHandler.HandleSSE)

	return s
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Message: "Order Management API"})
}

func (s *Server) handleGetHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "Database connection failed")
	}
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListMenu(c echo.Context) error {
	items, err := s.service.ListMenu(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateMenuItem(c echo.Context) error {
	var req models.MenuItemCreate
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	item, err := s.service.CreateMenuItem(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) handleListOrders(c echo.Context) error {
	orders, err := s.service.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (s *Server) handleCreateOrder(c echo.Context) error {
	var req models.OrderCreate
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := s.service.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

func (s *Server) handleGetOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}

	order, err := s.service.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) handleUpdateOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}

	var req models.OrderUpdate
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	order, err := s.service.UpdateOrder(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) handleWaitOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}

	target, timeout, err := handlers.ParseWaitQuery(c.QueryParam("status"), c.QueryParam("timeout"))
	if err != nil {
		return err
	}

	status, err := s.waitFor.Wait(c.Request().Context(), id, target, timeout)
	result, err := handlers.Result(id, status, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// errorHandler renders every error as {"detail": ...}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		detail := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
		_ = c.JSON(he.Code, apierrors.ErrorFields{Detail: detail})
		return
	}

	status, body := apierrors.Resolve(err)
	if status >= apierrors.StatusInternal {
		s.logger.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	_ = c.JSON(int(status), body)
}

func bindJSON(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return apierrors.Unprocessable(apierrors.FieldError{Field: "body", Message: "invalid JSON"})
	}
	return nil
}

func orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apierrors.Unprocessable(apierrors.FieldError{Field: "order_id", Message: "must be an integer"})
	}
	return id, nil
}
