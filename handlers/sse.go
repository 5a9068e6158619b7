// Package handlers provides the net/http status stream and wait handlers
// used by the Echo server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierrors "github.com/syp1xd/food-ordering-app/errors"
	"github.com/syp1xd/food-ordering-app/service"
	"github.com/syp1xd/food-ordering-app/stream"
)

// SSEHandler serves order status streams over Server-Sent Events.
type SSEHandler struct {
	service service.OrderService
	logger  *slog.Logger
}

// NewSSEHandler creates an SSEHandler. A nil logger uses slog.Default.
func NewSSEHandler(svc service.OrderService, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{
		service: svc,
		logger:  logger,
	}
}

// HandleSSE streams status changes for the order named by the :id path
// parameter. The request context ends the stream when the client goes away.
func (h *SSEHandler) HandleSSE(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.Unprocessable(apierrors.FieldError{Field: "order_id", Message: "must be an integer"})
	}

	snapshot, _ := strconv.ParseBool(c.QueryParam("snapshot"))
	ctx := c.Request().Context()

	session, err := h.service.Subscribe(ctx, orderID, service.SubscribeOptions{Snapshot: snapshot})
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set("Content-Type", "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	w := &flushWriter{
		ResponseWriter: res,
		rc:             http.NewResponseController(res.Writer),
	}
	if err := w.Flush(); err != nil {
		session.Close()
		return nil
	}

	if err := session.Serve(ctx, w); err != nil && !errors.Is(err, stream.ErrClientGone) {
		h.logger.Error("status stream failed",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()))
	}
	return nil
}

// flushWriter adapts an http.ResponseWriter to stream.Writer.
type flushWriter struct {
	http.ResponseWriter
	rc *http.ResponseController
}

func (w *flushWriter) Flush() error {
	return w.rc.Flush()
}
