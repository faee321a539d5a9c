// Package httpbackend implements draft.Backend over the intake HTTP API:
// POST {base}/drafts creates, PUT {base}/drafts/{id} replaces and
// GET {base}/drafts/{id} reads a draft.
package httpbackend

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

	"github.com/goliatone/go-intake/pkg/draft"
)

const defaultTimeout = 15 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// Client talks to a draft API rooted at a base URL.
type Client struct {
	base    string
	http    *http.Client
	headers http.Header
}

var _ draft.Backend = (*Client)(nil)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("httpbackend: %s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("httpbackend: %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// New returns a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("httpbackend: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("httpbackend: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Create(ctx context.Context, rec draft.Record) (draft.Identity, error) {
	var env draft.Envelope
	if err := c.do(ctx, http.MethodPost, c.base+"/drafts", rec, http.StatusCreated, &env); err != nil {
		return "", err
	}
	if env.ID == "" {
		return "", errors.New("httpbackend: create response missing id")
	}
	return env.ID, nil
}

func (c *Client) Update(ctx context.Context, id draft.Identity, rec draft.Record) error {
	return c.do(ctx, http.MethodPut, c.draftURL(id), rec, http.StatusOK, nil)
}

func (c *Client) Get(ctx context.Context, id draft.Identity) (draft.Record, error) {
	var env draft.Envelope
	err := c.do(ctx, http.MethodGet, c.draftURL(id), nil, http.StatusOK, &env)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return draft.Record{}, fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	if err != nil {
		return draft.Record{}, err
	}
	return env.Record, nil
}

func (c *Client) draftURL(id draft.Identity) string {
	return c.base + "/drafts/" + url.PathEscape(string(id))
}

func (c *Client) do(ctx context.Context, method, target string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpbackend: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("httpbackend: build request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpbackend: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpbackend: decode response: %w", err)
	}
	return nil
}
