// Package apperror provides structured error handling for the platform.
// All business errors must use AppError so callers can branch on codes
// instead of matching message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeBusinessRule     = "BUSINESS_RULE_VIOLATION"
	CodeCounterExhausted = "COUNTER_EXHAUSTED"
	CodeFormatAssembly   = "FORMAT_ASSEMBLY_FAILED"
	CodeScopeResolution  = "SCOPE_RESOLUTION_FAILED"
	CodeUnsupported      = "UNSUPPORTED_FEATURE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (counter code, scope, widths, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewCounterExhausted is returned when the next sequence value no longer fits
// the declared segment width. Truncating would mint duplicate identifiers,
// so the counter is rejected instead.
func NewCounterExhausted(counterCode string, value int64, width int) *AppError {
	return &AppError{
		Code:       CodeCounterExhausted,
		Message:    "Counter sequence exceeds its declared width",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"counter": counterCode,
			"value":   value,
			"width":   width,
		},
	}
}

// NewFormatAssembly is returned when a numeric-kind counter assembled into a
// string that cannot be parsed back as an integer.
func NewFormatAssembly(counterCode, assembled string) *AppError {
	return &AppError{
		Code:       CodeFormatAssembly,
		Message:    "Assembled identifier is not numeric",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"counter": counterCode, "assembled": assembled},
	}
}

// NewScopeResolution is returned when a company-level counter cannot resolve
// the owning company for the caller's site.
func NewScopeResolution(site string) *AppError {
	return &AppError{
		Code:       CodeScopeResolution,
		Message:    "Cannot resolve company for site",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"site": site},
	}
}

// NewUnsupported flags legacy features that are declared in the data model
// but intentionally not implemented (fiscal calendars, formula segments).
func NewUnsupported(feature string) *AppError {
	return &AppError{
		Code:       CodeUnsupported,
		Message:    fmt.Sprintf("%s is not supported", feature),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"feature": feature},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps a persistence failure (500)
func NewDatabase(op string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("Database operation failed: %s", op),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode checks whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsCounterExhausted checks if error is CodeCounterExhausted
func IsCounterExhausted(err error) bool {
	return HasCode(err, CodeCounterExhausted)
}
