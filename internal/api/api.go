// Package api is an HTTP client for a running journal service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trade-journal/internal/ingest"
	"trade-journal/internal/logger"
	"trade-journal/internal/types"
)

// Client represents an HTTP client with common configuration and utilities
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	useLogging bool
	retry      *RetryConfig
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...any) {
	if c.useLogging {
		logger.DebugSkip(ctx, 1, msg, args...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, args ...any) {
	if c.useLogging {
		logger.WarnSkip(ctx, 1, msg, args...)
	}
}

func (c *Client) logError(ctx context.Context, msg string, args ...any) {
	if c.useLogging {
		logger.ErrorSkip(ctx, 1, msg, args...)
	}
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader sets a default header for all requests
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithLogging enables logging for the API client
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

// WithRetry sets the retry policy for read requests
func WithRetry(cfg *RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithHTTPClient replaces the underlying client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the journal service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		retry:   DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Request represents an HTTP request configuration
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError is a non-2xx reply. Load rejections unwrap to the matching
// ingest error so callers can test them with errors.Is.
type StatusError struct {
	StatusCode int
	Message    string   `json:"error"`
	Code       string   `json:"code"`
	Columns    []string `json:"columns"`
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case "empty_input":
		return ingest.ErrEmptyInput
	case "missing_columns":
		return ingest.ErrMissingColumns
	case "no_completed_trades":
		return ingest.ErrNoCompletedTrades
	case "read_failure", "too_large":
		return ingest.ErrReadFailure
	}
	return nil
}

// Do executes the HTTP request
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	c.logDebug(ctx, "HTTP Request", "method", req.Method, "url", u)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logError(ctx, "HTTP request failed", "method", req.Method, "url", u, "error", err)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logDebug(ctx, "HTTP Response",
		"method", req.Method,
		"url", u,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"bodySize", len(body))

	if httpResp.StatusCode >= 400 {
		se := &StatusError{StatusCode: httpResp.StatusCode}
		if json.Unmarshal(body, se) != nil || se.Message == "" {
			se.Message = strings.TrimSpace(string(body))
		}
		c.logWarn(ctx, "HTTP error response",
			"method", req.Method,
			"url", u,
			"status", httpResp.StatusCode,
			"code", se.Code)
		return nil, se
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// ParseJSON parses the response body as JSON into the given struct
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// String returns the response body as a string
func (r *Response) String() string {
	return string(r.Body)
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// retryable reports whether err is worth another attempt: transport errors
// and 5xx replies. 4xx replies are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

// DoWithRetry executes a request with retry logic
func (c *Client) DoWithRetry(ctx context.Context, req Request) (*Response, error) {
	config := c.retry
	if config == nil || config.MaxAttempts < 1 {
		config = &RetryConfig{MaxAttempts: 1}
	}

	var lastErr error
	waitTime := config.InitialWait

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		resp, err := c.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || attempt == config.MaxAttempts {
			break
		}

		c.logWarn(ctx, "Request failed, retrying", "attempt", attempt, "error", err, "waitTime", waitTime)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
		waitTime *= 2
		if waitTime > config.MaxWait {
			waitTime = config.MaxWait
		}
	}

	return nil, lastErr
}

// ViewParams are the filter and log-view query parameters understood by the
// service. Empty fields are omitted.
type ViewParams struct {
	From, To   string
	Direction  string
	Instrument string
	Search     string
	Sort       string
	Order      string
}

func (p ViewParams) Values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("from", p.From)
	set("to", p.To)
	set("direction", p.Direction)
	set("instrument", p.Instrument)
	set("q", p.Search)
	set("sort", p.Sort)
	set("order", p.Order)
	return v
}

// Load uploads a broker export. It is not retried.
func (c *Client) Load(ctx context.Context, r io.Reader) (types.LoadReport, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return types.LoadReport{}, ingest.ReadFailure(err)
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/trades", Body: b, ContentType: "text/csv"})
	if err != nil {
		return types.LoadReport{}, err
	}
	var report types.LoadReport
	return report, resp.ParseJSON(&report)
}

func (c *Client) Clear(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/api/trades"})
	return err
}

func (c *Client) Dashboard(ctx context.Context, p ViewParams) (types.Dashboard, error) {
	resp, err := c.DoWithRetry(ctx, Request{Method: http.MethodGet, Path: "/api/dashboard", Query: p.Values()})
	if err != nil {
		return types.Dashboard{}, err
	}
	var d types.Dashboard
	return d, resp.ParseJSON(&d)
}

func (c *Client) LogView(ctx context.Context, p ViewParams) ([]types.Trade, error) {
	resp, err := c.DoWithRetry(ctx, Request{Method: http.MethodGet, Path: "/api/trades", Query: p.Values()})
	if err != nil {
		return nil, err
	}
	var out struct {
		Trades []types.Trade `json:"trades"`
	}
	return out.Trades, resp.ParseJSON(&out)
}

func (c *Client) Export(ctx context.Context, p ViewParams) (string, error) {
	resp, err := c.DoWithRetry(ctx, Request{Method: http.MethodGet, Path: "/api/trades/export", Query: p.Values()})
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) Instruments(ctx context.Context) ([]string, error) {
	resp, err := c.DoWithRetry(ctx, Request{Method: http.MethodGet, Path: "/api/instruments"})
	if err != nil {
		return nil, err
	}
	var out []string
	return out, resp.ParseJSON(&out)
}

// Health returns nil when the service answers /health with 200.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/health"})
	return err
}
