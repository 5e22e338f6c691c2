// Package envelope defines the uniform response wrapper every proxied call
// returns: success payloads, backend errors, timeouts, and network failures
// all collapse into the same shape so callers only ever parse one thing.
package envelope

import (
	"encoding/json"
	"strconv"
)

// Error codes returned by the proxy layer.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeMissingProductID    = "MISSING_PRODUCT_ID"
	CodeInvalidPrice        = "INVALID_PRICE"
	CodeRequestTimeout      = "REQUEST_TIMEOUT"
	CodeExternalAPIError    = "EXTERNAL_API_ERROR"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeProductExists       = "PRODUCT_EXISTS"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// Error codes attached by the client wrapper when a call fails in transport.
const (
	CodeFetchProductsError = "FETCH_PRODUCTS_ERROR"
	CodeFetchProductError  = "FETCH_PRODUCT_ERROR"
	CodeCreateProductError = "CREATE_PRODUCT_ERROR"
	CodeUpdateProductError = "UPDATE_PRODUCT_ERROR"
)

// Pagination describes the list window the backend reported.
type Pagination struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Search     string `json:"search,omitempty"`
}

// Envelope is the uniform response shape. The invariant is_success == (error_code == nil)
// holds for every envelope built through this package.
type Envelope struct {
	StatusCode string      `json:"status_code"`
	IsSuccess  bool        `json:"is_success"`
	ErrorCode  *string     `json:"error_code"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Success builds a success envelope for the given HTTP status and payload.
func Success(status int, data interface{}, pagination *Pagination) Envelope {
	return Envelope{
		StatusCode: strconv.Itoa(status),
		IsSuccess:  true,
		ErrorCode:  nil,
		Data:       data,
		Pagination: pagination,
	}
}

// Failure builds a failure envelope with data: null.
func Failure(status int, code, message string) Envelope {
	return Envelope{
		StatusCode: strconv.Itoa(status),
		IsSuccess:  false,
		ErrorCode:  &code,
		Message:    message,
		Data:       nil,
	}
}

// ListFailure builds a failure envelope whose data is an empty product array,
// never null, so array-based rendering on the caller side stays safe.
func ListFailure(status int, code, message string) Envelope {
	env := Failure(status, code, message)
	env.Data = []json.RawMessage{}
	return env
}

// BackendMessage extracts the human-readable message from a backend response
// body, when the body is itself envelope-shaped. Returns the fallback otherwise.
func BackendMessage(body []byte, fallback string) string {
	var partial struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &partial); err == nil && partial.Message != "" {
		return partial.Message
	}
	return fallback
}
