// Package apiclient is the shared HTTP client for the marketplace REST API.
//
// Every request carries the current bearer token, read from a TokenSource at
// send time. A 401 answer triggers one refresh through the Refresher and one
// re-issue of the same request; a 401 from the refresh endpoint itself is
// returned as is.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultRefreshPath is the endpoint that exchanges the refresh cookie for a new access token.
const DefaultRefreshPath = "/api/auth/refresh"

// RequestIDHeader is attached to every outgoing request.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the access token for the next request. An empty
// string means no Authorization header.
type TokenSource interface {
	Token() string
}

// Refresher obtains a new access token. Implementations own the session
// state and clear it when refreshing fails.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Auth is what a session provides to the client.
type Auth interface {
	TokenSource
	Refresher
}

// Client sends JSON requests to the API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	auth        Auth
	refreshPath string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying *http.Client, e.g. one with a cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAuth sets the token source and refresher.
func WithAuth(a Auth) Option {
	return func(c *Client) { c.auth = a }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		refreshPath: DefaultRefreshPath,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseAuth binds the session that supplies tokens. It is called once while
// wiring, before any request is sent.
func (c *Client) UseAuth(a Auth) {
	c.auth = a
}

// RefreshPath returns the refresh endpoint path.
func (c *Client) RefreshPath() string {
	return c.refreshPath
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as a POST request and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put sends body as a PUT request and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete sends a DELETE request and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends body as JSON and decodes a 2xx response into out (if non-nil).
// Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	token := ""
	if c.auth != nil {
		token = c.auth.Token()
	}

	retries := 0
	for {
		err := c.send(ctx, method, path, payload, token, out)
		if !IsStatus(err, http.StatusUnauthorized) {
			return err
		}
		if c.isRefreshPath(path) || c.auth == nil || retries > 0 || refreshDisabled(ctx) {
			return err
		}
		retries++

		c.logger.Debug("access token rejected, refreshing", "method", method, "path", path)
		newToken, refreshErr := c.auth.Refresh(ctx)
		if errors.Is(refreshErr, ErrRefreshUnsupported) {
			return err
		}
		if refreshErr != nil {
			c.logger.Warn("token refresh failed", "path", path, "error", refreshErr)
			return refreshErr
		}
		token = newToken
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) isRefreshPath(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path == c.refreshPath
}

// ErrEmptyToken is returned when an auth endpoint answers 2xx without a token.
var ErrEmptyToken = errors.New("server returned no access token")

type noRefreshKey struct{}

// NoRefresh marks ctx so that a 401 answer is returned without a refresh
// attempt. Credential endpoints use it: their 401 means bad credentials.
func NoRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRefreshKey{}, true)
}

func refreshDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noRefreshKey{}).(bool)
	return v
}

// ErrRefreshUnsupported is returned by StaticToken.Refresh. Do then hands
// back the original 401 instead.
var ErrRefreshUnsupported = errors.New("token cannot be refreshed")

// StaticToken is an Auth with a fixed bearer token, used for the admin API.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token() string { return string(t) }

func (t StaticToken) Refresh(ctx context.Context) (string, error) {
	return "", ErrRefreshUnsupported
}
