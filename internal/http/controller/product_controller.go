package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihorko/product-dashboard/internal/backend"
	"github.com/ihorko/product-dashboard/internal/metrics"
	"github.com/ihorko/product-dashboard/pkg/envelope"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
)

// ProductController proxies browser requests to the external product API.
// Handlers hold no state beyond the backend client and are safe to invoke
// concurrently.
type ProductController struct {
	backend *backend.Client
}

// NewProductController creates a new ProductController with the given backend client.
func NewProductController(client *backend.Client) *ProductController {
	return &ProductController{
		backend: client,
	}
}

// ListProducts handles the HTTP GET request for the product list. Pagination
// is recomputed here: offset = (page-1) * limit. An empty search parameter is
// never forwarded. The caller's Authorization header passes through untouched;
// rejecting unauthenticated calls is the backend's job.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), defaultPage)
	limit := parsePositiveInt(c.DefaultQuery("limit", "10"), defaultLimit)
	search := strings.TrimSpace(c.Query("search"))

	query := backend.ListQuery{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: search,
	}

	resp, err := pc.backend.ListProducts(c.Request.Context(), c.GetHeader("Authorization"), query)
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) {
			metrics.ProxiedRequests.WithLabelValues(opList, metrics.OutcomeTimeout).Inc()
			metrics.BackendTimeouts.WithLabelValues(opList).Inc()
			respond(c, envelope.ListFailure(http.StatusRequestTimeout, envelope.CodeRequestTimeout, "request to product service timed out"))
			return
		}
		metrics.ProxiedRequests.WithLabelValues(opList, metrics.OutcomeError).Inc()
		respond(c, envelope.ListFailure(http.StatusInternalServerError, envelope.CodeInternalServerError, "failed to fetch products"))
		return
	}

	if !resp.Successful() {
		metrics.ProxiedRequests.WithLabelValues(opList, metrics.OutcomeError).Inc()
		message := envelope.BackendMessage(resp.Body, "product service returned an error")
		respond(c, envelope.ListFailure(resp.StatusCode, envelope.CodeExternalAPIError, message))
		return
	}

	metrics.ProxiedRequests.WithLabelValues(opList, metrics.OutcomeSuccess).Inc()
	passthrough(c, resp)
}

// GetProduct handles the HTTP GET request for a single product, identified by
// the product_id query parameter. A missing id short-circuits without a
// backend call.
func (pc *ProductController) GetProduct(c *gin.Context) {
	productID := strings.TrimSpace(c.Query("product_id"))
	if productID == "" {
		metrics.ProxiedRequests.WithLabelValues(opGet, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeMissingProductID, "product_id is required"))
		return
	}

	resp, err := pc.backend.GetProduct(c.Request.Context(), c.GetHeader("Authorization"), productID)
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) {
			metrics.ProxiedRequests.WithLabelValues(opGet, metrics.OutcomeTimeout).Inc()
			metrics.BackendTimeouts.WithLabelValues(opGet).Inc()
			respond(c, envelope.Failure(http.StatusRequestTimeout, envelope.CodeRequestTimeout, "request to product service timed out"))
			return
		}
		metrics.ProxiedRequests.WithLabelValues(opGet, metrics.OutcomeError).Inc()
		respond(c, envelope.Failure(http.StatusInternalServerError, envelope.CodeInternalServerError, "failed to fetch product"))
		return
	}

	if !resp.Successful() {
		metrics.ProxiedRequests.WithLabelValues(opGet, metrics.OutcomeError).Inc()
		if resp.StatusCode == http.StatusNotFound {
			respond(c, envelope.Failure(http.StatusNotFound, envelope.CodeProductNotFound, envelope.BackendMessage(resp.Body, "product not found")))
			return
		}
		respond(c, envelope.Failure(resp.StatusCode, envelope.CodeExternalAPIError, envelope.BackendMessage(resp.Body, "product service returned an error")))
		return
	}

	metrics.ProxiedRequests.WithLabelValues(opGet, metrics.OutcomeSuccess).Inc()
	passthrough(c, resp)
}

// CreateProduct handles the HTTP POST request for creating a product. Presence
// of product_title and a non-negative numeric product_price is checked before
// any backend call; the body is then forwarded verbatim.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	body, fields, ok := readBody(c, opCreate)
	if !ok {
		return
	}

	title, _ := fields["product_title"].(string)
	if strings.TrimSpace(title) == "" {
		metrics.ProxiedRequests.WithLabelValues(opCreate, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeValidationError, "product_title is required"))
		return
	}
	if !validBodyPrice(c, opCreate, fields, true) {
		return
	}

	resp, err := pc.backend.CreateProduct(c.Request.Context(), c.GetHeader("Authorization"), body)
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) {
			metrics.ProxiedRequests.WithLabelValues(opCreate, metrics.OutcomeTimeout).Inc()
			metrics.BackendTimeouts.WithLabelValues(opCreate).Inc()
			respond(c, envelope.Failure(http.StatusRequestTimeout, envelope.CodeRequestTimeout, "request to product service timed out"))
			return
		}
		metrics.ProxiedRequests.WithLabelValues(opCreate, metrics.OutcomeError).Inc()
		respond(c, envelope.Failure(http.StatusInternalServerError, envelope.CodeInternalServerError, "failed to create product"))
		return
	}

	if !resp.Successful() {
		metrics.ProxiedRequests.WithLabelValues(opCreate, metrics.OutcomeError).Inc()
		switch resp.StatusCode {
		case http.StatusBadRequest:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeValidationError, envelope.BackendMessage(resp.Body, "invalid product data")))
		case http.StatusConflict:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeProductExists, envelope.BackendMessage(resp.Body, "product already exists")))
		default:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeInternalServerError, envelope.BackendMessage(resp.Body, "failed to create product")))
		}
		return
	}

	metrics.ProxiedRequests.WithLabelValues(opCreate, metrics.OutcomeSuccess).Inc()
	passthrough(c, resp)
}

// UpdateProduct handles the HTTP PUT request for updating a product. The body
// must carry product_id; product_price, when present, must be a non-negative
// number. The full body, product_id included, is forwarded for the backend to
// merge.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	body, fields, ok := readBody(c, opUpdate)
	if !ok {
		return
	}

	productID, _ := fields["product_id"].(string)
	if strings.TrimSpace(productID) == "" {
		metrics.ProxiedRequests.WithLabelValues(opUpdate, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeMissingProductID, "product_id is required"))
		return
	}
	if !validBodyPrice(c, opUpdate, fields, false) {
		return
	}

	resp, err := pc.backend.UpdateProduct(c.Request.Context(), c.GetHeader("Authorization"), body)
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) {
			metrics.ProxiedRequests.WithLabelValues(opUpdate, metrics.OutcomeTimeout).Inc()
			metrics.BackendTimeouts.WithLabelValues(opUpdate).Inc()
			respond(c, envelope.Failure(http.StatusRequestTimeout, envelope.CodeRequestTimeout, "request to product service timed out"))
			return
		}
		metrics.ProxiedRequests.WithLabelValues(opUpdate, metrics.OutcomeError).Inc()
		respond(c, envelope.Failure(http.StatusInternalServerError, envelope.CodeInternalServerError, "failed to update product"))
		return
	}

	if !resp.Successful() {
		metrics.ProxiedRequests.WithLabelValues(opUpdate, metrics.OutcomeError).Inc()
		switch resp.StatusCode {
		case http.StatusNotFound:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeProductNotFound, envelope.BackendMessage(resp.Body, "product not found")))
		case http.StatusBadRequest:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeValidationError, envelope.BackendMessage(resp.Body, "invalid product data")))
		default:
			respond(c, envelope.Failure(resp.StatusCode, envelope.CodeInternalServerError, envelope.BackendMessage(resp.Body, "failed to update product")))
		}
		return
	}

	metrics.ProxiedRequests.WithLabelValues(opUpdate, metrics.OutcomeSuccess).Inc()
	passthrough(c, resp)
}

// readBody reads the raw request body and decodes it for pre-flight checks.
// The raw bytes are what gets forwarded, so unknown fields survive the proxy.
func readBody(c *gin.Context, op string) ([]byte, map[string]interface{}, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.ProxiedRequests.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeValidationError, "failed to read request body"))
		return nil, nil, false
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		metrics.ProxiedRequests.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeValidationError, "request body must be a JSON object"))
		return nil, nil, false
	}
	return body, fields, true
}

// validBodyPrice checks the product_price field of a decoded body. For create
// the field is required; for update it is only validated when present.
func validBodyPrice(c *gin.Context, op string, fields map[string]interface{}, required bool) bool {
	raw, present := fields["product_price"]
	if !present {
		if !required {
			return true
		}
		metrics.ProxiedRequests.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeInvalidPrice, "product_price is required"))
		return false
	}

	price, ok := numericValue(raw)
	if !ok {
		metrics.ProxiedRequests.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeInvalidPrice, "product_price must be a number"))
		return false
	}
	if price < 0 {
		metrics.ProxiedRequests.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		respond(c, envelope.Failure(http.StatusBadRequest, envelope.CodeInvalidPrice, "product_price must not be negative"))
		return false
	}
	return true
}

// numericValue accepts JSON numbers and numeric strings, matching what the
// dashboard's form layer historically submitted.
func numericValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func parsePositiveInt(raw string, fallback int) int {
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || val < 1 {
		return fallback
	}
	return val
}

func respond(c *gin.Context, env envelope.Envelope) {
	status, err := strconv.Atoi(env.StatusCode)
	if err != nil {
		status = http.StatusInternalServerError
	}
	c.JSON(status, env)
}

// passthrough returns the backend's success body verbatim; it is already
// envelope-shaped.
func passthrough(c *gin.Context, resp *backend.Response) {
	c.Data(resp.StatusCode, "application/json", resp.Body)
}
