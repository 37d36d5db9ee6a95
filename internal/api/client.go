package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/rliu/stock-universe/internal/config"
)

// Client queries the exchange's paginated JSONP endpoint.
type Client struct {
	cfg        config.FetchConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	retries    atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for one fetch run.
func NewClient(cfg config.FetchConfig, opts ...ClientOption) *Client {
	// A non-positive rate disables pacing entirely.
	limit := rate.Inf
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. The configured timeout is
// applied to it.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		hc.Timeout = c.cfg.Timeout
		c.httpClient = hc
	}
}

// RetryCount reports the total retry attempts performed so far.
func (c *Client) RetryCount() int {
	return int(c.retries.Load())
}

// Close releases the client's network session.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
