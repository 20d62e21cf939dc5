// Package http is a small fluent client for the JSON APIs the service calls
// (PostgREST and the auth admin API).
//
//	c := http.NewClient(baseURL, http.WithHeader("apikey", key))
//	resp, err := c.Get("/rest/v1/coupons").
//	    Query("select", "*").
//	    Header("Prefer", "count=exact").
//	    Send(ctx)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sincro/backoffice/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        200,
	MaxIdleConnsPerHost: 100,
	IdleConnTimeout:     90 * time.Second,
}

// Client sends requests relative to BaseURL with a fixed set of headers.
type Client struct {
	BaseURL string
	HTTP    *gohttp.Client
	Timeout time.Duration
	headers gohttp.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithHTTPClient replaces the underlying client. Tests pass httptest clients.
func WithHTTPClient(hc *gohttp.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &gohttp.Client{Transport: defaultTransport},
		Timeout: 30 * time.Second,
		headers: gohttp.Header{"Accept": []string{"application/json"}},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Get(path string) *Request    { return c.newRequest(gohttp.MethodGet, path) }
func (c *Client) Head(path string) *Request   { return c.newRequest(gohttp.MethodHead, path) }
func (c *Client) Post(path string) *Request   { return c.newRequest(gohttp.MethodPost, path) }
func (c *Client) Put(path string) *Request    { return c.newRequest(gohttp.MethodPut, path) }
func (c *Client) Patch(path string) *Request  { return c.newRequest(gohttp.MethodPatch, path) }
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	return &Request{
		client:    c,
		method:    method,
		path:      path,
		headers:   c.headers.Clone(),
		query:     url.Values{},
		retries:   1,
		retryWait: 250 * time.Millisecond,
	}
}

// Request is a fluent request builder. It is not safe for concurrent use.
type Request struct {
	client    *Client
	method    string
	path      string
	headers   gohttp.Header
	query     url.Values
	body      any
	retries   int
	retryWait time.Duration
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// Bearer sets Authorization: Bearer <token>.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Query appends a query parameter. Repeated keys are kept.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// Body sets the request body. Values other than []byte are sent as JSON.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Retry makes n total attempts on transport errors and 5xx responses,
// doubling wait after each. Only use it on idempotent requests.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

// URL returns the absolute request URL.
func (r *Request) URL() string {
	u := r.client.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// Send executes the request. A non-2xx response is not an error; use Throw.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do(ctx)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err == nil {
			if attempt == r.retries {
				return resp, nil
			}
			err = resp.Throw()
		}
		lastErr = err
		if attempt < r.retries {
			backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.WithCtx(ctx).Warn("http: request failed, retrying",
				"method", r.method, "path", r.path, "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("http: %s %s: %w", r.method, r.path, lastErr)
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	body, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	if r.client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.client.Timeout)
		defer cancel()
	}

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header = r.headers.Clone()
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) encodeBody() (io.Reader, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), nil
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// JSON decodes the body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Header(key string) string { return r.Headers.Get(key) }

// StatusError is returned by Throw for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: status %d: %s", e.StatusCode, e.Body)
}

// Throw returns a *StatusError unless the status is 2xx.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	body := string(r.Raw)
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{StatusCode: r.StatusCode, Body: body}
}
