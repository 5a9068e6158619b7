package client

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client to use for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout for HTTP requests. Streams are not affected.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// SubscribeOption configures an order subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	snapshot   bool
	bufferSize int
	maxBackoff time.Duration
}

// WithSnapshot asks the server for the current status as the first event.
// Reconnects always request a snapshot so missed changes are not lost.
func WithSnapshot() SubscribeOption {
	return func(c *subscribeConfig) {
		c.snapshot = true
	}
}

// WithBufferSize sets the capacity of the returned channel.
func WithBufferSize(n int) SubscribeOption {
	return func(c *subscribeConfig) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithMaxBackoff caps the delay between reconnect attempts.
func WithMaxBackoff(d time.Duration) SubscribeOption {
	return func(c *subscribeConfig) {
		if d > 0 {
			c.maxBackoff = d
		}
	}
}
