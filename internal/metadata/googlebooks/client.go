// Package googlebooks provides a rate-limited client for the Google Books
// volumes API, the bot's external catalog-search collaborator.
package googlebooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultTimeout = 10 * time.Second

	defaultLimit = 5
	maxLimit     = 20
)

// ErrUnavailable reports a transport failure, timeout, or non-2xx response
// from the catalog API. Callers recover it locally as "no results"; it is
// never fatal.
var ErrUnavailable = errors.New("googlebooks: search unavailable")

// Client provides access to the Google Books search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests and self-hosted
// proxies.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout overrides the fixed request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new Google Books client.
// Rate limited to 1 request per second with a small burst; the public API
// throttles aggressively on unauthenticated traffic.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
		baseURL:     defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
