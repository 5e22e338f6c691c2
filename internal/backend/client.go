// Package backend holds the outbound HTTP client for the external product API.
// The backend is the source of truth for storage, pagination, and search; this
// client only shapes requests and classifies failures.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTimeout marks an outbound call that exceeded its deadline.
	ErrTimeout = errors.New("backend request timed out")
)

// Response is a raw backend outcome. Non-2xx statuses are returned here, not
// as errors, so callers can map them to their own error codes.
type Response struct {
	StatusCode int
	Body       []byte
}

// Successful reports whether the backend answered with a 2xx status.
func (r *Response) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ListQuery carries the recomputed pagination parameters for a list call.
type ListQuery struct {
	Page   int
	Limit  int
	Offset int
	Search string
}

// Client calls the external product API. It is stateless and safe for
// concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New creates a backend client for the given base URL (including the API path
// prefix, e.g. https://host/api/web/v1).
func New(baseURL string, readTimeout, writeTimeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ListProducts forwards a list call with recomputed pagination parameters.
// The search parameter is omitted entirely when empty.
func (c *Client) ListProducts(ctx context.Context, token string, query ListQuery) (*Response, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("offset", strconv.Itoa(query.Offset))
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	return c.do(ctx, http.MethodGet, "/products?"+params.Encode(), token, nil, c.readTimeout)
}

// GetProduct forwards a single-product lookup.
func (c *Client) GetProduct(ctx context.Context, token, productID string) (*Response, error) {
	params := url.Values{}
	params.Set("product_id", productID)
	return c.do(ctx, http.MethodGet, "/product?"+params.Encode(), token, nil, c.readTimeout)
}

// CreateProduct forwards a create call with the caller's body verbatim.
func (c *Client) CreateProduct(ctx context.Context, token string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/product", token, body, c.writeTimeout)
}

// UpdateProduct forwards an update call with the caller's body verbatim,
// including product_id; the backend merges the partial field set.
func (c *Client) UpdateProduct(ctx context.Context, token string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/product", token, body, c.writeTimeout)
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: reading %s %s response", ErrTimeout, method, path)
		}
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
