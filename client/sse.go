package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/syp1xd/food-ordering-app/models"
)

// ErrUnexpectedSSEStatus is returned when SSE returns an unexpected status code.
var ErrUnexpectedSSEStatus = errors.New("unexpected SSE status code")

const initialBackoff = time.Second

// sseManager tracks active order streams so Close can end them.
type sseManager struct {
	client *Client

	mu     sync.Mutex
	subs   map[int]context.CancelFunc
	nextID int
	wg     sync.WaitGroup
}

// newSSEManager creates a new SSE manager.
func newSSEManager(client *Client) *sseManager {
	return &sseManager{
		client: client,
		subs:   make(map[int]context.CancelFunc),
	}
}

// subscribe starts a connection loop for one order.
func (m *sseManager) subscribe(ctx context.Context, orderID int64, opts ...SubscribeOption) (<-chan *models.StatusEvent, error) {
	cfg := subscribeConfig{bufferSize: 16, maxBackoff: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan *models.StatusEvent, cfg.bufferSize)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer close(ch)
		defer m.remove(id)

		m.runConnection(subCtx, orderID, cfg, ch)
	}()

	return ch, nil
}

func (m *sseManager) remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.subs[id]; ok {
		cancel()
		delete(m.subs, id)
	}
}

// runConnection manages the SSE connection lifecycle with reconnection.
func (m *sseManager) runConnection(ctx context.Context, orderID int64, cfg subscribeConfig, ch chan<- *models.StatusEvent) {
	backoff := initialBackoff
	snapshot := cfg.snapshot

	for {
		if ctx.Err() != nil {
			return
		}

		received, err := m.connectSSE(ctx, orderID, snapshot, ch)
		if ctx.Err() != nil {
			return
		}
		snapshot = true

		// Reset backoff once a stream has delivered anything
		if received {
			backoff = initialBackoff
		}
		if err == nil && received {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, cfg.maxBackoff)
	}
}

// connectSSE opens one stream and relays its data events until it ends.
// It reports whether any line was received.
func (m *sseManager) connectSSE(ctx context.Context, orderID int64, snapshot bool, ch chan<- *models.StatusEvent) (bool, error) {
	url := m.client.baseURL + "/api/sse/orders/" + strconv.FormatInt(orderID, 10)
	if snapshot {
		url += "?snapshot=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Streams outlive the request timeout of the regular client
	streamClient := &http.Client{Transport: m.client.httpClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return false, ErrUnexpectedSSEStatus
	}

	// Process SSE events
	scanner := bufio.NewScanner(resp.Body)
	var data strings.Builder
	received := false

	for scanner.Scan() {
		line := scanner.Text()
		received = true

		// Empty line marks end of event
		if line == "" {
			if data.Len() > 0 {
				m.processEvent(ctx, data.String(), ch)
				data.Reset()
			}
			continue
		}

		// Comments carry keep-alives
		if strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return received, fmt.Errorf("connection error: %w", err)
	}

	return received, nil
}

// processEvent parses one data payload and hands it to the subscriber.
func (m *sseManager) processEvent(ctx context.Context, data string, ch chan<- *models.StatusEvent) {
	ev, err := models.ParseStatusEvent([]byte(data))
	if err != nil {
		return
	}

	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}

// close cancels every active subscription and waits for them to finish.
func (m *sseManager) close() {
	m.mu.Lock()
	for id, cancel := range m.subs {
		cancel()
		delete(m.subs, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
}
