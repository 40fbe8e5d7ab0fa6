package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"fossid-tools/workbench-archiver/pkg/telemetry/metrics"
)

// Default transport tuning. The pool size matches the fan-out of the batch
// fetcher so concurrent detail calls reuse warm connections.
const (
	DefaultPoolSize       = 20
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultListTimeout    = 300 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
)

// Config contains the settings for a Workbench API client.
type Config struct {
	// BaseURL is the Workbench API endpoint. "/api.php" is appended when
	// missing.
	BaseURL string

	// Username authenticates every call.
	Username string

	// Token is the API key paired with Username.
	Token string

	// ConnectTimeout bounds TCP/TLS setup so a dead server is detected
	// quickly. Default: 10s.
	ConnectTimeout time.Duration

	// RequestTimeout is the read deadline for per-record calls.
	// Default: 30s.
	RequestTimeout time.Duration

	// ListTimeout is the read deadline for bulk listing calls, which can
	// be slow on large inventories. Default: 300s.
	ListTimeout time.Duration

	// MaxRetries is the number of attempts for transient transport
	// faults. Default: 3.
	MaxRetries int

	// RetryDelay is the base backoff; attempt n waits n*RetryDelay.
	// Default: 2s.
	RetryDelay time.Duration

	// PoolSize is the connection pool size. Default: 20.
	PoolSize int

	// Metrics optionally records call counts, latency, and retries.
	Metrics *metrics.Collector
}

// Client is a pooled, retrying Workbench API client. It is safe for
// concurrent use: every call is an independent request/response cycle over
// the shared connection pool.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Workbench API client with connection pooling.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("workbench base URL is required")
	}
	if cfg.Username == "" || cfg.Token == "" {
		return nil, fmt.Errorf("workbench username and token are required")
	}
	if !strings.HasSuffix(cfg.BaseURL, "/api.php") {
		cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/api.php"
	}

	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = DefaultListTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		cfg: cfg,
		// Read deadlines are per-operation, so the client itself carries
		// no global timeout.
		httpClient: &http.Client{Transport: transport},
		logger:     slog.Default().With("component", "workbench.client"),
	}, nil
}

// BaseURL returns the normalized endpoint the client calls.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Username returns the configured API user.
func (c *Client) Username() string {
	return c.cfg.Username
}

// call performs one envelope request with bounded retry. Credentials are
// merged into data; timeout is the read deadline for each attempt.
func (c *Client) call(ctx context.Context, group, action string, data map[string]any, timeout time.Duration) (json.RawMessage, error) {
	payload := map[string]any{
		"username": c.cfg.Username,
		"key":      c.cfg.Token,
	}
	for k, v := range data {
		payload[k] = v
	}

	body, err := json.Marshal(apiRequest{Group: group, Action: action, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.cfg.RetryDelay
			c.logger.Warn("retrying API call",
				"action", action,
				"attempt", attempt+1,
				"max_retries", c.cfg.MaxRetries,
				"delay", delay,
			)
			if c.cfg.Metrics != nil {
				c.cfg.Metrics.APIRetry(action)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		raw, err := c.doOnce(ctx, action, body, timeout)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
		c.logger.Warn("API call failed",
			"action", action,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

// doOnce performs a single attempt and classifies its failure mode.
func (c *Client) doOnce(parent context.Context, action string, body []byte, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	outcome := "ok"
	defer func() {
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.APIRequest(action, outcome, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if parentErr := parent.Err(); parentErr != nil {
			outcome = "canceled"
			return nil, parentErr
		}
		classified := classifyNetError(action, err, timeout)
		outcome = errOutcome(classified)
		return nil, classified
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		// The read deadline can fire mid-body.
		classified := classifyNetError(action, err, timeout)
		outcome = errOutcome(classified)
		return nil, classified
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		outcome = "auth_error"
		return nil, &AuthError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		outcome = "http_error"
		return nil, &APIError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		outcome = "parse_error"
		return nil, &ParseError{Action: action, Cause: err}
	}

	return envelope.Data, nil
}

// classifyNetError maps a transport-level failure onto the retryable error
// taxonomy.
func classifyNetError(action string, err error, timeout time.Duration) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Action: action, Timeout: timeout}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Action: action, Timeout: timeout}
	}
	return &ConnectionError{Action: action, Cause: err}
}

func errOutcome(err error) string {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return "timeout"
	}
	return "connection_error"
}
