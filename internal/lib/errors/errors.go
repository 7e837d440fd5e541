package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeInvalidNonce    ErrorCode = "INVALID_NONCE"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeRateLimitExceed ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Server errors (5xx)
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
)

// APIError represents a structured API error with code, message, and optional details
type APIError struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail adds a single detail to the error
func (e *APIError) WithDetail(key, value string) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func NewAPIError(code ErrorCode, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NewValidationError(message string) *APIError {
	return NewAPIError(ErrCodeValidation, message, http.StatusBadRequest)
}

func NewBadRequestError(message string) *APIError {
	return NewAPIError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// NewInvalidInputError names the offending field in the details.
func NewInvalidInputError(field, reason string) *APIError {
	return NewAPIError(ErrCodeInvalidInput, "Invalid input", http.StatusBadRequest).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewNotFoundError(resource string) *APIError {
	return NewAPIError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewNotFoundErrorWithID(resource, id string) *APIError {
	return NewNotFoundError(resource).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(message string) *APIError {
	return NewAPIError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *APIError {
	return NewAPIError(ErrCodeForbidden, message, http.StatusForbidden)
}

// NewInvalidNonceError is returned when an anti-forgery token does not verify.
func NewInvalidNonceError() *APIError {
	return NewAPIError(ErrCodeInvalidNonce, "Security check failed. Please refresh the page and try again.", http.StatusForbidden)
}

// NewRateLimitError carries the number of seconds the caller should wait.
func NewRateLimitError(waitSeconds int) *APIError {
	return NewAPIError(
		ErrCodeRateLimitExceed,
		fmt.Sprintf("Rate limit exceeded. Please wait %d seconds before trying again.", waitSeconds),
		http.StatusTooManyRequests,
	).WithDetail("wait_seconds", strconv.Itoa(waitSeconds))
}

func NewDatabaseError(operation string) *APIError {
	return NewAPIError(ErrCodeDatabaseError, "Database operation failed", http.StatusInternalServerError).
		WithDetail("operation", operation)
}

func NewInternalError(message string) *APIError {
	if message == "" {
		message = "An internal error occurred"
	}
	return NewAPIError(ErrCodeInternalError, message, http.StatusInternalServerError)
}

func NewServiceUnavailableError(service string) *APIError {
	return NewAPIError(ErrCodeServiceUnavail, "Service temporarily unavailable", http.StatusServiceUnavailable).
		WithDetail("service", service)
}

func NewTimeoutError(operation string) *APIError {
	return NewAPIError(ErrCodeTimeout, "Operation timed out", http.StatusGatewayTimeout).
		WithDetail("operation", operation)
}

// Helper functions

func codeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func IsNotFoundError(err error) bool {
	return codeOf(err) == ErrCodeNotFound
}

func IsForbiddenError(err error) bool {
	return codeOf(err) == ErrCodeForbidden
}

func IsRateLimitError(err error) bool {
	return codeOf(err) == ErrCodeRateLimitExceed
}

func IsValidationError(err error) bool {
	return codeOf(err) == ErrCodeValidation
}

// WrapError wraps a standard error into an APIError.
// If the error is already an APIError, it returns it as-is.
func WrapError(err error, message string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError(message)
}
