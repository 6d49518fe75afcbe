// Package apperror defines the error taxonomy surfaced to API clients.
package apperror

import "net/http"

// Code is one of the fixed taxonomy values clients can switch on.
type Code string

const (
	CodeValidation     Code = "validation"
	CodeUnauthenticated Code = "unauthenticated"
	CodeForbidden      Code = "forbidden"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeRateLimited    Code = "rate_limited"
	CodeInternal       Code = "internal"
)

var httpStatusByCode = map[Code]int{
	CodeValidation:      http.StatusBadRequest,
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeInternal:        http.StatusInternalServerError,
}

// AppError is a structured error that maps directly onto the HTTP error
// envelope. Err, when set, is never exposed to the client.
type AppError struct {
	Code       Code
	Message    string
	Details    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError for a taxonomy code, resolving its HTTP status.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatusByCode[code]}
}

// WithDetails attaches a details string (e.g. a field name) and returns e.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Wrap attaches an internal error, kept out of the client-facing response.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatusByCode[code], Err: err}
}

// Validation builds a 400 validation error.
func Validation(message string) *AppError { return New(CodeValidation, message) }

// Unauthenticated builds a 401 error for missing/invalid credentials.
func Unauthenticated(message string) *AppError { return New(CodeUnauthenticated, message) }

// Forbidden builds a 403 error for role mismatch or cross-merchant access.
func Forbidden(message string) *AppError { return New(CodeForbidden, message) }

// NotFound builds a 404 error for an unknown reference.
func NotFound(entity string) *AppError { return New(CodeNotFound, entity+" not found") }

// Conflict builds a 409 error for state-machine or idempotency violations.
func Conflict(message string) *AppError { return New(CodeConflict, message) }

// RateLimited builds a 429 error. The rate-limit middleware returns it when a
// route group's request budget is used up.
func RateLimited(message string) *AppError { return New(CodeRateLimited, message) }

// Internal wraps an unexpected error as a 500. The body never leaks err.
func Internal(err error) *AppError {
	return Wrap(CodeInternal, "internal server error", err)
}
