package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxAttempts bounds how many times one request is attempted, regardless of
// failure kind.
const maxAttempts = 3

// Client is the resilient HTTP client for candidate dispatch.
//
// Every request passes through the target host's circuit breaker, carries an
// adaptive timeout selected by operation type, and retries transport errors,
// timeouts, and HTTP 5xx with exponential backoff (1s base, 10s cap). HTTP
// 4xx and CircuitOpenError are never retried. One success or failure is
// recorded on the breaker per request, covering all attempts.
type Client struct {
	httpClient *http.Client
	timeouts   TimeoutConfig

	failureThreshold int
	recoveryTimeout  time.Duration

	retryBase time.Duration
	retryCap  time.Duration

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeouts overrides the adaptive timeout configuration.
func WithTimeouts(t TimeoutConfig) Option {
	return func(c *Client) { c.timeouts = t }
}

// WithBreakerConfig overrides the circuit breaker parameters.
func WithBreakerConfig(failureThreshold int, recoveryTimeout time.Duration) Option {
	return func(c *Client) {
		c.failureThreshold = failureThreshold
		c.recoveryTimeout = recoveryTimeout
	}
}

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryIntervals overrides the backoff base and cap (useful for tests).
func WithRetryIntervals(base, maxInterval time.Duration) Option {
	return func(c *Client) {
		c.retryBase = base
		c.retryCap = maxInterval
	}
}

// NewClient creates a resilient client with default timeouts and breaker
// settings (3 consecutive failures open a host for 30 seconds).
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:       &http.Client{},
		timeouts:         DefaultTimeouts(),
		failureThreshold: 3,
		recoveryTimeout:  30 * time.Second,
		retryBase:        1 * time.Second,
		retryCap:         10 * time.Second,
		breakers:         make(map[string]*CircuitBreaker),
		logger:           slog.Default().With("component", "dispatch-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, op OperationType, out any) error {
	return c.Request(ctx, http.MethodGet, rawURL, op, nil, out)
}

// Post issues a POST request with a JSON payload.
func (c *Client) Post(ctx context.Context, rawURL string, op OperationType, payload, out any) error {
	return c.Request(ctx, http.MethodPost, rawURL, op, payload, out)
}

// Request issues one resilient HTTP request and decodes the JSON response
// into out (ignored when out is nil).
func (c *Client) Request(ctx context.Context, method, rawURL string, op OperationType, payload, out any) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}

	breaker := c.breakerFor(host)
	if !breaker.CanExecute() {
		return &CircuitOpenError{Host: host}
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
	}

	timeout := c.timeouts.For(op)
	if err := c.requestWithRetry(ctx, method, rawURL, timeout, body, out); err != nil {
		breaker.RecordFailure()
		return err
	}
	breaker.RecordSuccess()
	return nil
}

// BreakerState reports the circuit state for a host ("closed" when the host
// has never been seen).
func (c *Client) BreakerState(host string) CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.breakers[host]; ok {
		return b.State()
	}
	return CircuitClosed
}

// ResetBreaker manually closes the breaker for a host.
func (c *Client) ResetBreaker(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.breakers[host]; ok {
		b.Reset()
	}
}

func (c *Client) breakerFor(host string) *CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[host]
	if !ok {
		b = NewCircuitBreaker(c.failureThreshold, c.recoveryTimeout)
		c.breakers[host] = b
	}
	return b
}

func (c *Client) requestWithRetry(ctx context.Context, method, rawURL string, timeout time.Duration, body []byte, out any) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBase
	policy.MaxInterval = c.retryCap

	attempt := 0
	operation := func() error {
		attempt++
		err := c.attempt(ctx, method, rawURL, timeout, body, out)
		if err == nil {
			return nil
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			// The caller's context is gone; further attempts are pointless.
			return backoff.Permanent(err)
		}

		c.logger.Warn("Dispatch attempt failed",
			"url", rawURL, "attempt", attempt, "error", err)
		return err
	}

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx))
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, timeout time.Duration, body []byte, out any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: truncateBody(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}
	return u.Host, nil
}

func truncateBody(b []byte) string {
	const limit = 512
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit])
}
