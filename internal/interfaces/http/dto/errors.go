package dto

import "net/http"

// Error codes shared between the application services and the HTTP
// layer. Services attach these to domain errors; handlers translate
// them to status codes through GetHTTPStatus.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input and validation error codes
const (
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// Authentication and authorization error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAccountNotFound is used when an account lookup misses
	ErrCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeEmailExists is used when a signup email is already registered
	ErrCodeEmailExists = "EMAIL_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeInsufficientStock is used when an order exceeds available stock
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// Identity provider error codes
const (
	// ErrCodeProviderUnavailable is used when the identity provider cannot be reached
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	// ErrCodeProviderForbidden is used when the provider rejects the credential
	ErrCodeProviderForbidden = "PROVIDER_FORBIDDEN"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when a rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAccountNotFound:  http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeEmailExists:      http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	// Provider errors. Unavailability surfaces as a bad gateway so
	// callers can tell "we broke" from "the provider broke".
	ErrCodeProviderUnavailable: http.StatusBadGateway,
	ErrCodeProviderForbidden:   http.StatusForbidden,

	// Domain-specific codes raised by the application services
	"ALREADY_LINKED":          http.StatusConflict,
	"CATEGORY_EXISTS":         http.StatusConflict,
	"CATEGORY_NOT_FOUND":      http.StatusNotFound,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"DISALLOWED_CONTENT_TYPE": http.StatusBadRequest,
	"EMPTY_ORDER":             http.StatusBadRequest,
	"IMAGE_NOT_FOUND":         http.StatusNotFound,
	"INVALID_ACCOUNT":         http.StatusBadRequest,
	"INVALID_CATEGORY_NAME":   http.StatusBadRequest,
	"INVALID_DISPLAY_NAME":    http.StatusBadRequest,
	"INVALID_EMAIL":           http.StatusBadRequest,
	"INVALID_EXTERNAL_ID":     http.StatusBadRequest,
	"INVALID_OPERATION":       http.StatusBadRequest,
	"INVALID_ORDER_STATUS":    http.StatusBadRequest,
	"INVALID_PRICE":           http.StatusBadRequest,
	"INVALID_PRODUCT_NAME":    http.StatusBadRequest,
	"INVALID_QUANTITY":        http.StatusBadRequest,
	"INVALID_ROLE":            http.StatusBadRequest,
	"INVALID_STORAGE_KEY":     http.StatusBadRequest,
	"INVALID_TRANSITION":      http.StatusUnprocessableEntity,
	"ORDER_NOT_FOUND":         http.StatusNotFound,
	"PRODUCT_NOT_FOUND":       http.StatusNotFound,
	"PRODUCT_UNAVAILABLE":     http.StatusUnprocessableEntity,
	"UPLOAD_NOT_FOUND":        http.StatusNotFound,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ValidationDetail describes a single field validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationErrorResponse creates a validation error response with
// per-field details
func NewValidationErrorResponse(details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    ErrCodeValidation,
			Message: "Request validation failed",
			Details: details,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID for correlation with logs
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}
