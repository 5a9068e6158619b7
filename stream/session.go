// Package stream implements per-connection subscription sessions that turn
// bus traffic into Server-Sent Events lines for a single order.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/syp1xd/food-ordering-app/events"
	"github.com/syp1xd/food-ordering-app/models"
)

const (
	// DefaultKeepAlive is the idle interval after which a keep-alive comment is sent.
	DefaultKeepAlive = 30 * time.Second

	// DefaultBufferSize is the capacity of a session's subscriber channel.
	DefaultBufferSize = 16
)

var (
	// ErrBusClosed is returned by Next when the event bus has shut down.
	ErrBusClosed = errors.New("event bus closed")

	// ErrSessionClosed is returned by Next after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrClientGone wraps transport write failures.
	ErrClientGone = errors.New("client gone")
)

// Writer is the transport side of a stream: every line is written, then flushed.
type Writer interface {
	io.Writer
	Flush() error
}

// Session is one client's subscription to status changes of a single order.
// The session owns its channel; the bus only holds a send reference until Close.
// Next, Lines and Serve are meant for a single goroutine; Close may be called
// from anywhere.
type Session struct {
	orderID   int64
	bus       events.Bus
	ch        chan *models.StatusEvent
	handle    events.Handle
	keepAlive time.Duration
	bufSize   int
	logger    *slog.Logger

	primed *models.StatusEvent
	// items already queued when Prime ran; only these may repeat the snapshot
	stale  int
	status string

	closed    chan struct{}
	closeOnce sync.Once
}

// Option configures a Session
type Option func(*Session)

// WithKeepAlive overrides the idle interval between keep-alive lines.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// WithBufferSize overrides the subscriber channel capacity.
func WithBufferSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates a session for orderID and registers its channel with bus.
// Events published before Open returns are not seen by the session.
func Open(bus events.Bus, orderID int64, opts ...Option) *Session {
	s := &Session{
		orderID:   orderID,
		bus:       bus,
		keepAlive: DefaultKeepAlive,
		bufSize:   DefaultBufferSize,
		logger:    slog.Default(),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ch = make(chan *models.StatusEvent, s.bufSize)
	s.handle = bus.Register(s.ch)

	s.logger.Info("subscriber connected",
		slog.Int64("order_id", orderID),
		slog.String("handle", s.handle.String()))

	return s
}

// OrderID returns the order this session follows.
func (s *Session) OrderID() int64 {
	return s.orderID
}

// Handle returns the session's bus registration.
func (s *Session) Handle() events.Handle {
	return s.handle
}

// Prime queues status as the first data line of the stream. It must be
// called before the first Next. Events already queued at that point that
// repeat the same status are suppressed; later publishes are always sent.
func (s *Session) Prime(status string) {
	s.primed = models.NewStatusEvent(s.orderID, status)
	s.stale = len(s.ch)
	s.status = status
}

// Next blocks until there is a line to send: a data line for a matching
// event, or a keep-alive once the keep-alive interval passes without output.
// Events for other orders and nil items are discarded.
func (s *Session) Next(ctx context.Context) (Line, error) {
	if s.primed != nil {
		ev := s.primed
		s.primed = nil
		return DataLine(ev), nil
	}

	idle := time.NewTimer(s.keepAlive)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return Line{}, ctx.Err()
		case <-s.closed:
			return Line{}, ErrSessionClosed
		case <-s.bus.Done():
			return Line{}, ErrBusClosed
		case ev := <-s.ch:
			queuedBeforePrime := s.stale > 0
			if queuedBeforePrime {
				s.stale--
			}
			if ev == nil || ev.OrderID != s.orderID {
				continue
			}
			if queuedBeforePrime && ev.Status == s.status {
				continue
			}
			s.logger.Debug("sending status event",
				slog.Int64("order_id", ev.OrderID),
				slog.String("status", ev.Status))
			return DataLine(ev), nil
		case <-idle.C:
			return KeepAliveLine(), nil
		}
	}
}

// Lines returns the session's output as a lazy sequence. The sequence ends
// when ctx is cancelled, the bus shuts down or the consumer stops ranging;
// the session is closed in every case.
func (s *Session) Lines(ctx context.Context) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		defer s.Close()

		for {
			if ctx.Err() != nil {
				return
			}
			line, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Serve relays lines to w until the client disconnects, ctx is cancelled or
// the bus shuts down. A failed write or flush is reported as ErrClientGone;
// every other ending returns nil.
func (s *Session) Serve(ctx context.Context, w Writer) error {
	var werr error
	for line := range s.Lines(ctx) {
		if _, err := w.Write(line.Bytes()); err != nil {
			werr = fmt.Errorf("%w: %w", ErrClientGone, err)
			break
		}
		if err := w.Flush(); err != nil {
			werr = fmt.Errorf("%w: %w", ErrClientGone, err)
			break
		}
	}
	return werr
}

// Close deregisters the session from the bus. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.bus.Deregister(s.handle)
		s.logger.Info("subscriber disconnected",
			slog.Int64("order_id", s.orderID),
			slog.String("handle", s.handle.String()))
	})
}
