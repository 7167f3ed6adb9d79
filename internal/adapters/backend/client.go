// Package backend is the HTTP collaborator that delivers feedback payloads to
// the upstream feedback service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harkwise/userapp/pkg/logger"
	"github.com/harkwise/userapp/pkg/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxDrainedBytes = 64 << 10
	maxErrorSnippet = 256
)

// Client posts JSON bodies to the backend and reports any failure as ErrSubmit.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying http.Client (transport, proxies, tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for baseURL, e.g. "https://api.harkwise.com".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute http(s)", ErrConfig, baseURL)
	}

	c := &Client{
		baseURL: u,
		client:  &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Post sends body as JSON to path. The response body is drained and ignored.
func (c *Client) Post(ctx context.Context, path string, body any) error {
	const op = "backend.post"
	start := time.Now()

	err := c.post(ctx, path, body)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.RecordBackendDuration(outcome, float64(elapsed.Microseconds())/1000)

	if err != nil {
		c.logger.Warn(ctx, "backend call failed",
			logger.String("op", op),
			logger.String("path", path),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return fmt.Errorf("%s: %w: %w", op, ErrSubmit, err)
	}
	c.logger.Debug(ctx, "backend call succeeded", logger.String("path", path), logger.Duration("elapsed", elapsed))
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainedBytes))
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}
