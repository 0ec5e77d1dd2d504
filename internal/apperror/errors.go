// Package apperror provides domain error types for CropSense. Each error
// carries an HTTP status code and a message that is safe to show to the
// client. The Echo error handler in internal/app maps them to responses.
//
// Raw database, AI-service, or infrastructure errors must never reach the
// client. Wrap them with NewInternal (or NewUpstream) so the detail is
// logged while the caller only sees a generic message.
package apperror

import (
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors.
type AppError struct {
	// Code is the HTTP status code (e.g., 401, 409, 500).
	Code int `json:"-"`

	// Type is a machine-readable classifier (e.g., "unauthorized").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Fields lists individual validation messages when Type is
	// "validation_error". Every violated constraint is reported, not
	// just the first one.
	Fields []string `json:"fields,omitempty"`

	// Internal holds the underlying error for logging. Never exposed.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    "not_found",
		Message: message,
	}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "bad_request",
		Message: message,
	}
}

// NewUnauthorized creates a 401 Unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "unauthorized",
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    "conflict",
		Message: message,
	}
}

// NewValidation creates a 422 error carrying every violated constraint.
// The summary message joins the individual field messages so clients that
// only read Message still see the full list.
func NewValidation(fields []string) *AppError {
	msg := "invalid input"
	if len(fields) > 0 {
		msg = fields[0]
		for _, f := range fields[1:] {
			msg += ", " + f
		}
	}
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    "validation_error",
		Message: msg,
		Fields:  fields,
	}
}

// NewUpstream creates a 502 error for AI collaborator failures. The real
// error is logged; the client sees the stock "assistant unavailable" text.
func NewUpstream(err error) *AppError {
	return &AppError{
		Code:     http.StatusBadGateway,
		Type:     "upstream_error",
		Message:  "The AI assistant is currently unavailable. Please try again later.",
		Internal: err,
	}
}

// NewUnavailable creates a 503 error for features that are not configured
// (e.g., advisory endpoints without an AI API key).
func NewUnavailable(message string) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Type:    "unavailable",
		Message: message,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is kept
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe message from an error. Unknown error
// types collapse to a generic message so internal detail (queries, hosts,
// stack fragments) never leaks.
func SafeMessage(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for any
// other error type.
func SafeCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
