package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/failure"
	"github.com/dmitrijs2005/agentportal/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const RequestIDHeader = "X-Request-Id"

// TokenSource yields the current access token, or "" when there is none.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Request describes one API call. Headers are applied after the defaults, so
// they can override Content-Type or Authorization.
type Request struct {
	Method  string
	Body    any
	Headers http.Header
}

type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. A nil Jar is replaced
// with a fresh cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the API at baseURL. tokens may be nil
// for unauthenticated use.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *HTTPClient) bearer(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "access token unavailable, sending request without it", "error", err)
		return ""
	}
	return tok
}

func (c *HTTPClient) transportFailure(ctx context.Context, path string, err error) error {
	c.log.Error(ctx, "api request failed", "path", path, "error", err)
	return failure.Transport(fmt.Errorf("%w: %w", ErrUnavailable, err))
}

// Do sends r to path and decodes the JSON response into out (which may be
// nil). The body is parsed on both success and error paths.
func (c *HTTPClient) Do(ctx context.Context, path string, r Request, out any) error {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if tok := c.bearer(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, vs := range r.Headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(ctx, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(ctx, path, err)
	}

	var payload json.RawMessage
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return c.transportFailure(ctx, path, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(payload)
		log.Warn(ctx, "api request rejected", "status", resp.StatusCode, "message", msg)
		return failure.Remote(resp.StatusCode, msg)
	}

	log.Debug(ctx, "api request succeeded", "status", resp.StatusCode)

	if out != nil && payload != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return c.transportFailure(ctx, path, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// errorMessage picks "detail", then "message", from an error body.
func errorMessage(payload json.RawMessage) string {
	var body struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if payload != nil {
		_ = json.Unmarshal(payload, &body)
	}
	for _, v := range []any{body.Detail, body.Message} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return GenericFailureMessage
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, path, Request{Method: http.MethodPost, Body: body}, out)
}
