package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-threads/internal/hydrate"
)

// Client performs paced, validated requests against the remote store.
type Client struct {
	base     string
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
	headers  map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit paces outbound requests. Zero limit disables pacing.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithHeader attaches a header to every request (auth token, client id).
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// NewClient builds a client rooted at baseURL. The default limiter allows
// short bursts while keeping sustained traffic near ten requests per second.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		validate: validator.New(),
		headers:  map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FetchPage requests one list page and decodes its items. Each item passes
// through a hydrate decoder so callers can normalise legacy server payloads
// with pre/post hooks.
func FetchPage[E any](ctx context.Context, c *Client, path string, req PageRequest, opts ...hydrate.DecoderOption[E]) (Page[E], error) {
	query := url.Values{}
	if req.Cursor != "" {
		query.Set("cursor", req.Cursor)
	} else if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	env, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return Page[E]{}, err
	}

	var raw []map[string]any
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &raw); err != nil {
			return Page[E]{}, fmt.Errorf("remote: decode page items for %s: %w", path, err)
		}
	}

	decoder := hydrate.NewDecoder(opts...)
	hctx := hydrate.Context{Endpoint: path}
	items := make([]E, 0, len(raw))
	for _, payload := range raw {
		item, err := decoder.Decode(hctx, payload)
		if err != nil {
			return Page[E]{}, err
		}
		items = append(items, item)
	}

	page := Page[E]{Items: items}
	if env.Pagination != nil {
		if err := c.validate.Struct(env.Pagination); err != nil {
			return Page[E]{}, fmt.Errorf("remote: invalid pagination for %s: %w", path, err)
		}
		page.Pagination = *env.Pagination
	}
	if env.Meta != nil {
		page.Meta = *env.Meta
	}
	return page, nil
}

// Call performs a mutation request and decodes the authoritative entity (or
// field patch) the server returns.
func Call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...hydrate.DecoderOption[T]) (T, error) {
	var zero T
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return zero, err
	}
	if len(env.Data) == 0 {
		return zero, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return zero, fmt.Errorf("remote: decode response for %s: %w", path, err)
	}
	return hydrate.NewDecoder(opts...).Decode(hydrate.Context{Endpoint: path}, payload)
}

// Do performs a mutation request and discards any response body beyond the
// success check. Suits toggles whose optimistic state already matches.
func (c *Client) Do(ctx context.Context, method, path string, body any) error {
	_, err := c.do(ctx, method, path, nil, body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return envelope{}, fmt.Errorf("remote: rate limiter: %w", err)
		}
	}

	endpoint := c.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("remote: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return envelope{}, fmt.Errorf("remote: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{}, decodeAPIError(resp, payload)
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			return envelope{}, fmt.Errorf("remote: decode envelope: %w", err)
		}
	}
	if len(payload) > 0 && !env.Success {
		return envelope{}, &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	return env, nil
}

func decodeAPIError(resp *http.Response, payload []byte) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if len(payload) > 0 && json.Unmarshal(payload, &body) == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
	}
	apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	return apiErr
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
