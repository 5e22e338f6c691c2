// Package dashclient is the single call-site UI code uses to reach the proxy
// layer. It attaches the freshest session token per call, validates input
// before it leaves the process, and folds every transport failure into the
// same envelope shape the proxy returns.
//
// Local pre-flight validation failures are returned as errors (fix your
// input); remote failures come back as failure envelopes (something went
// wrong), so callers can tell the two apart without inspecting messages.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ihorko/product-dashboard/pkg/envelope"
	"github.com/ihorko/product-dashboard/pkg/model"
	"github.com/ihorko/product-dashboard/pkg/session"
)

const defaultTimeout = 15 * time.Second

// ListParams control a product list call. Zero values fall back to page 1,
// limit 10; blank search is omitted from the request.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// ListResponse is the decoded envelope of a list call. Data is never nil.
type ListResponse struct {
	StatusCode string               `json:"status_code"`
	IsSuccess  bool                 `json:"is_success"`
	ErrorCode  *string              `json:"error_code"`
	Message    string               `json:"message,omitempty"`
	Data       []model.Product      `json:"data"`
	Pagination *envelope.Pagination `json:"pagination,omitempty"`
}

// ProductResponse is the decoded envelope of a get/create/update call.
type ProductResponse struct {
	StatusCode string         `json:"status_code"`
	IsSuccess  bool           `json:"is_success"`
	ErrorCode  *string        `json:"error_code"`
	Message    string         `json:"message,omitempty"`
	Data       *model.Product `json:"data"`
}

// Client calls the proxy routes. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session.TokenSource
	notifier   Notifier
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTokenSource sets the session store consulted before every call.
func WithTokenSource(ts session.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier sets the sink for user-facing notifications.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// New creates a client for the proxy at baseURL (e.g. https://dashboard.example.com/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     session.Static{},
		notifier:   NotifierFunc(func(Notification) {}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches a page of products. It never returns an error: remote failures
// come back as a failure envelope tagged FETCH_PRODUCTS_ERROR.
func (c *Client) List(ctx context.Context, params ListParams) *ListResponse {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if search := strings.TrimSpace(params.Search); search != "" {
		query.Set("search", search)
	}

	resp := &ListResponse{}
	status, body, err := c.do(ctx, http.MethodGet, "/products?"+query.Encode(), nil)
	if err != nil {
		return listFailure(transportStatus(err), envelope.CodeFetchProductsError, err.Error())
	}
	if status >= 400 {
		return listFailure(status, envelope.CodeFetchProductsError, envelope.BackendMessage(body, "failed to fetch products"))
	}
	if err := json.Unmarshal(body, resp); err != nil {
		return listFailure(status, envelope.CodeFetchProductsError, "unexpected response from product service")
	}
	if resp.Data == nil {
		resp.Data = []model.Product{}
	}
	return resp
}

// Get fetches a single product. A blank id is rejected locally without a
// network call.
func (c *Client) Get(ctx context.Context, id string) (*ProductResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &model.ValidationError{Field: "product_id", Reason: "must not be blank"}
	}

	query := url.Values{}
	query.Set("product_id", id)
	return c.exchange(ctx, http.MethodGet, "/product?"+query.Encode(), nil, envelope.CodeFetchProductError, "failed to fetch product")
}

// Create cleans and validates the input locally, then submits it. Validation
// failures are returned as *model.ValidationError before any network call.
func (c *Client) Create(ctx context.Context, in model.ProductInput) (*ProductResponse, error) {
	cleaned := in.Clean()
	if err := cleaned.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}
	return c.exchange(ctx, http.MethodPost, "/product", body, envelope.CodeCreateProductError, "failed to create product")
}

// Update cleans and validates the present fields locally, then submits the
// partial body with product_id for the backend to merge.
func (c *Client) Update(ctx context.Context, id string, patch model.ProductPatch) (*ProductResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &model.ValidationError{Field: "product_id", Reason: "must not be blank"}
	}

	cleaned := patch.Clean()
	if err := cleaned.Validate(); err != nil {
		return nil, err
	}

	// product_id rides alongside the patch fields in one flat object.
	fields := map[string]interface{}{"product_id": id}
	patchJSON, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}
	var patchFields map[string]interface{}
	if err := json.Unmarshal(patchJSON, &patchFields); err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}
	for k, v := range patchFields {
		fields[k] = v
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	return c.exchange(ctx, http.MethodPut, "/product", body, envelope.CodeUpdateProductError, "failed to update product")
}

// exchange runs one call and folds every remote failure into a failure
// envelope carrying the per-call error code.
func (c *Client) exchange(ctx context.Context, method, path string, body []byte, failureCode, fallbackMsg string) (*ProductResponse, error) {
	status, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return productFailure(transportStatus(err), failureCode, err.Error()), nil
	}
	if status >= 400 {
		return productFailure(status, failureCode, envelope.BackendMessage(respBody, fallbackMsg)), nil
	}

	resp := &ProductResponse{}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return productFailure(status, failureCode, "unexpected response from product service"), nil
	}
	return resp, nil
}

var errTimeout = errors.New("request timed out")

// do resolves the freshest token, performs the request, and fires the
// status-class notification. Token resolution failures degrade to an
// unauthenticated call; the proxy and backend decide how to reject it.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		token = ""
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.notifier.Notify(Notification{Kind: KindTimeout, Message: "the request took too long"})
			return 0, nil, errTimeout
		}
		c.notifier.Notify(Notification{Kind: KindNetworkError, Message: "could not reach the product service"})
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.notifier.Notify(Notification{Kind: KindNetworkError, Message: "could not read the response"})
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if kind, ok := kindForStatus(resp.StatusCode); ok {
		c.notifier.Notify(Notification{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    envelope.BackendMessage(respBody, http.StatusText(resp.StatusCode)),
		})
	}

	return resp.StatusCode, respBody, nil
}

func transportStatus(err error) int {
	if errors.Is(err, errTimeout) {
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func listFailure(status int, code, message string) *ListResponse {
	return &ListResponse{
		StatusCode: strconv.Itoa(status),
		IsSuccess:  false,
		ErrorCode:  &code,
		Message:    message,
		Data:       []model.Product{},
	}
}

func productFailure(status int, code, message string) *ProductResponse {
	return &ProductResponse{
		StatusCode: strconv.Itoa(status),
		IsSuccess:  false,
		ErrorCode:  &code,
		Message:    message,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
