package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// APIError represents a protocol-level failure: an HTTP error status,
// a known error-page marker, a malformed JSONP envelope, or a payload
// missing its expected shape. Protocol errors are never retried.
type APIError struct {
	Message    string
	StatusCode int    // 0 when the failure is not an HTTP status
	Snippet    string // truncated excerpt of the offending response text
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("exchange api error %d: %s", e.StatusCode, e.Message)
	}
	return "exchange api error: " + e.Message
}

// isTransient reports whether an error is a retryable network failure.
// Protocol errors and caller cancellation are never transient.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection-level failures surface as *url.Error from http.Client.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// fetchBody performs one rate-limited GET with bounded exponential
// backoff. Only transient network failures are retried; the final
// attempt's failure propagates.
func (c *Client) fetchBody(ctx context.Context, params url.Values) ([]byte, error) {
	delay := c.cfg.Retry.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.retries.Add(1)
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", delay,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.cfg.Retry.BackoffMultiplier)
		}

		// Request pacing applies to every attempt, retries included.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doRequest(ctx, params)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isTransient(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max attempts reached: %w", lastErr)
}

// doRequest performs a single GET against the configured endpoint.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	fullURL := c.cfg.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	if cookie := c.cfg.CookieHeader(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Message:    http.StatusText(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Snippet:    snippet(string(body)),
		}
	}

	return body, nil
}
