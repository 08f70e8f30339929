package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
)

const maxResponseBytes = 16 << 20

// Client talks to the portal REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
	options *cache.Cache // filter-option enumerations, nil when disabled
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOptionsTTL caches filter-option enumerations for ttl. A non-positive
// ttl disables the cache.
func WithOptionsTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.options = nil
			return
		}
		c.options = cache.New(ttl, 2*ttl)
	}
}

// New creates a Client for baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.NewNop(),
		options: cache.New(5*time.Minute, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method      string
	path        string
	token       string
	query       url.Values
	body        io.Reader
	contentType string
	defaultMsg  string
	// authRequired makes an empty token a precondition failure.
	authRequired bool
}

// do performs one request and decodes a successful JSON body into out.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if r.authRequired && r.token == "" {
		return portal.ErrNoToken
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api", "request failed", map[string]interface{}{
			"method":     r.method,
			"path":       r.path,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return &FetchError{Message: DefaultNetworkMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &FetchError{Status: resp.StatusCode, Message: DefaultNetworkMessage, Err: err}
	}

	c.logger.Info("api", "request finished", map[string]interface{}{
		"method":      r.method,
		"path":        r.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  requestID,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{
			Status:  resp.StatusCode,
			Message: messageFromBody(body, r.defaultMsg),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{
			Status:  resp.StatusCode,
			Message: "Unexpected response from server",
			Err:     err,
		}
	}
	return nil
}

// GetJSON fetches an authenticated endpoint and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, path, token string, query url.Values, defaultMsg string, out interface{}) error {
	return c.do(ctx, request{
		method:       http.MethodGet,
		path:         path,
		token:        token,
		query:        query,
		defaultMsg:   defaultMsg,
		authRequired: true,
	}, out)
}
