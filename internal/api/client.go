// Package api is a typed client for the productivity REST API.
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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Collection and auth endpoints, relative to the base URL.
const (
	EndpointAuthLogin    = "auth/login/"
	EndpointAuthRegister = "auth/register/"
	EndpointAuthRefresh  = "auth/refresh/"
	EndpointAuthMe       = "auth/me/"
	EndpointSessions     = "focus-sessions/"
	EndpointNotes        = "notes/"
	EndpointBlocks       = "blocks/"
)

// ErrUnauthorized is matched by HTTP 401 errors via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Status int
	Method string
	URL    string
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s %s: %s", e.Status, e.Method, e.URL, strings.TrimSpace(e.Body))
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// IsStatus reports whether err carries an HTTP response with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}

// TokenSource supplies bearer tokens. Invalidate is called after the server
// rejected a token so the next Token call obtains a fresh one.
type TokenSource interface {
	oauth2.TokenSource
	Invalidate()
}

// Client talks to the API. Auth endpoints are called without credentials;
// everything else goes through the token source once Authenticated is used.
type Client struct {
	baseURL *url.URL
	plain   *http.Client
	authed  *http.Client
	tokens  TokenSource

	// Logf, when set, receives one line per request.
	Logf func(format string, args ...any)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.plain = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.plain = &http.Client{Timeout: d} }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{baseURL: u, plain: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	c.authed = c.plain
	return c, nil
}

// Authenticated returns a copy of c that sends bearer tokens from ts.
func (c *Client) Authenticated(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	base := c.plain.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp.authed = &http.Client{
		Timeout:   c.plain.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: base},
	}
	return &cp
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(u).String()
}

func itemPath(collection string, id int64) string {
	return collection + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// do sends a JSON request and decodes the response into out (if non-nil).
// A 401 on an authenticated request invalidates the token and retries once.
func (c *Client) do(ctx context.Context, method, ref string, in, out any, authenticated bool) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	endpoint := c.resolve(ref)
	hc := c.plain
	if authenticated {
		hc = c.authed
	}

	for attempt := 0; ; attempt++ {
		body, err := c.send(ctx, hc, method, endpoint, payload)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decoding %s %s response: %w", method, endpoint, err)
			}
			return nil
		}
		if attempt == 0 && authenticated && c.tokens != nil && IsStatus(err, http.StatusUnauthorized) {
			c.tokens.Invalidate()
			continue
		}
		return err
	}
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.logf("-> %s %s [%s]", method, endpoint, reqID)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.logf("<- %d %s %s [%s]", resp.StatusCode, method, endpoint, reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Method: method, URL: endpoint, Body: string(body)}
	}
	return body, nil
}

// page is the paginated list envelope.
type page[T any] struct {
	Results []T    `json:"results"`
	Next    string `json:"next"`
}

// list fetches a collection. The server may answer with a bare array or a
// paginated envelope; next links are followed until exhausted.
func list[T any](ctx context.Context, c *Client, ref string) ([]T, error) {
	all := []T{}
	for ref != "" {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, ref, nil, &raw, true); err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var items []T
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, fmt.Errorf("decoding list: %w", err)
			}
			return append(all, items...), nil
		}
		var p page[T]
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &p); err != nil {
				return nil, fmt.Errorf("decoding page: %w", err)
			}
		}
		all = append(all, p.Results...)
		ref = p.Next
	}
	return all, nil
}
