// Package httpclient is the outbound HTTP client used for calls to the
// generative-language classifier. It applies a default deadline when the
// caller's context has none, bounds response bodies, and turns transport and
// status failures into categorized errors.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zoneheat/zoneheat/internal/errors"
)

const (
	// DefaultTimeout applies when the request context carries no deadline.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps how much of a response body PostJSON reads.
	DefaultMaxBodyBytes int64 = 1 << 20

	defaultMaxIdleConnsPerHost   = 4
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultResponseHeaderTimeout = 10 * time.Second
	defaultDialTimeout           = 5 * time.Second

	defaultUserAgent = "zoneheat/1"

	componentHTTPClient = "httpclient"
)

// Client wraps http.Client with deadline handling and observability hooks.
// Safe for concurrent use.
type Client struct {
	client         *http.Client
	defaultTimeout time.Duration
	maxBodyBytes   int64
	userAgent      string

	hookMu        sync.RWMutex
	beforeRequest func(*http.Request)
	afterResponse func(*http.Request, *http.Response, time.Duration, error)
}

// Config configures a Client. Zero fields take defaults.
type Config struct {
	DefaultTimeout time.Duration
	UserAgent      string
	MaxBodyBytes   int64

	// Transport replaces the tuned default transport. Tests inject mocks here.
	Transport http.RoundTripper
}

// StatusError reports a non-2xx response. Body holds at most the first
// 512 bytes for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// New creates a Client. A nil cfg uses defaults; cfg is not mutated.
func New(cfg *Config) *Client {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Transport == nil {
		c.Transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
			ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		}
	}

	return &Client{
		client:         &http.Client{Transport: c.Transport},
		defaultTimeout: c.DefaultTimeout,
		maxBodyBytes:   c.MaxBodyBytes,
		userAgent:      c.UserAgent,
	}
}

// Do executes req under ctx as given. The caller closes the response body
// when err is nil. Default deadlines are applied by PostJSON, which owns the
// body lifetime.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.Newf("nil request").
			Component(componentHTTPClient).
			Category(errors.CategoryValidation).
			Build()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.hookMu.RLock()
	before, after := c.beforeRequest, c.afterResponse
	c.hookMu.RUnlock()

	if before != nil {
		before(req)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if after != nil {
		after(req, resp, time.Since(start), err)
	}
	return resp, err
}

// PostJSON marshals payload, posts it to url and returns the response body.
// A non-2xx status yields a *StatusError wrapped in a categorized error.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.defaultTimeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.New(err).
			Component(componentHTTPClient).
			Category(errors.CategoryValidation).
			Context("operation", "marshal_payload").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(err).
			Component(componentHTTPClient).
			Category(errors.CategoryConfiguration).
			Context("operation", "build_request").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := data
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, errors.New(&StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}).
			Component(componentHTTPClient).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Build()
	}
	return data, nil
}

func transportError(ctx context.Context, err error) error {
	category := errors.CategoryNetwork
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		category = errors.CategoryTimeout
	}
	return errors.New(err).
		Component(componentHTTPClient).
		Category(category).
		Build()
}

// SetBeforeRequestHook registers fn to run before each request.
func (c *Client) SetBeforeRequestHook(fn func(*http.Request)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.beforeRequest = fn
}

// SetAfterResponseHook registers fn to run after each request with the
// elapsed time. resp is nil when err is non-nil.
func (c *Client) SetAfterResponseHook(fn func(*http.Request, *http.Response, time.Duration, error)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.afterResponse = fn
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
