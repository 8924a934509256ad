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
	"net/url"
	"strings"
	"time"
)

// Config is read once at startup and never changes for the life of a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// RequestOptions describes one call besides its path. Method defaults to GET.
type RequestOptions struct {
	Method    string
	Query     Query
	Body      any
	AuthToken string
}

// Client issues JSON requests against the rental API. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	userAgent string
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("apiclient: base URL must include a host")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return nil, errors.New("apiclient: base URL must not carry a query or fragment")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:   strings.TrimRight(parsed.String(), "/"),
		http:      httpClient,
		logger:    cfg.Logger,
		userAgent: strings.TrimSpace(cfg.UserAgent),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs exactly one HTTP call and returns the raw JSON body of a 2xx
// answer. An empty or non-JSON success body yields nil without an error.
// Every failure is an *Error.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return nil, invalidRequest(method, path, "invalid request path %q: must start with a single /", path)
	}
	if strings.ContainsAny(path, "?#") {
		return nil, invalidRequest(method, path, "invalid request path %q: pass query parameters through Query", path)
	}

	target := c.baseURL + path
	query, err := opts.Query.Encode()
	if err != nil {
		return nil, invalidRequest(method, path, "invalid request query: %v", err)
	}
	if query != "" {
		target += "?" + query
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			e := invalidRequest(method, path, "invalid request body: %v", err)
			e.Err = err
			return nil, e
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		e := invalidRequest(method, path, "invalid request: %v", err)
		e.Err = err
		return nil, e
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(opts.AuthToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(method, path, err)
	}
	if c.logger != nil {
		c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Kind:    KindHTTPStatus,
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Message: errorMessage(data, resp.StatusCode),
			Body:    data,
		}
		c.logError("api request failed", apiErr)
		return nil, apiErr
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, nil
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) transportError(method, path string, err error) *Error {
	message := "network error: could not reach the rental API"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		message = "network error: request was cancelled or timed out"
	}
	apiErr := &Error{
		Kind:    KindTransport,
		Method:  method,
		Path:    path,
		Message: message,
		Err:     err,
	}
	c.logError("api request failed", apiErr)
	return apiErr
}

func (c *Client) logError(msg string, err *Error) {
	if c.logger != nil {
		c.logger.Warn(msg, "method", err.Method, "path", err.Path, "kind", err.Kind, "status", err.Status, "error", err.Message)
	}
}

// errorMessage prefers the body's "error" field, then "message", then a generic
// message carrying the status.
func errorMessage(body []byte, status int) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"error", "message"} {
			var text string
			if raw, ok := fields[key]; ok && json.Unmarshal(raw, &text) == nil && strings.TrimSpace(text) != "" {
				return text
			}
		}
	}
	return fmt.Sprintf("request failed (status %d)", status)
}
