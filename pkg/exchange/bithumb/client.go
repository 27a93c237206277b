package bithumb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL     = "https://api.bithumb.com"
	defaultHTTPTimeout = 10 * time.Second
)

// Client executes signed REST calls against the exchange. It owns all
// token construction; business logic never sees the signing key.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout adjusts the per-call transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient constructs a signed exchange client.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	client := &Client{
		baseURL:    defaultBaseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// get issues a signed GET and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, target, params, nil, result)
}

// post issues a signed POST with a JSON body. The body fields double as
// the token's query-hash input, encoded the same way as GET parameters.
func (c *Client) post(ctx context.Context, path string, params url.Values, result interface{}) error {
	body := make(map[string]string, len(params))
	for key := range params {
		body[key] = params.Get(key)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bithumb: encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+path, params, payload, result)
}

// delete issues a signed DELETE with query parameters.
func (c *Client) delete(ctx context.Context, path string, params url.Values, result interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodDelete, target, params, nil, result)
}

func (c *Client) do(ctx context.Context, method, target string, params url.Values, body []byte, result interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("bithumb: build request: %w", err)
	}

	token, err := c.creds.bearerToken(params, c.now())
	if err != nil {
		return fmt.Errorf("bithumb: sign request: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, data)
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}
