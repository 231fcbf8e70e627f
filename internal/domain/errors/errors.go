// Package errors defines the application error taxonomy: typed errors that
// carry an HTTP status, a stable business code and a user-facing message.
package errors

import (
	"net/http"

	"vigil/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// WithMessage swaps the user-facing message, keeping code and status. Used to
// surface backend-provided messages verbatim.
func (e *BaseError) WithMessage(message string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   message,
		details:   e.details,
	}
}

// Is matches errors sharing the same business code, so a copy derived via
// WithDetails or WithMessage still matches its predefined prototype.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// Predefined error types
var (
	// Authentication
	ErrNotAuthenticated = NewBaseError(
		http.StatusUnauthorized,
		"NOT_AUTHENTICATED",
		"You must log in first",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Phone number or password is incorrect",
		"",
	)

	// Backend API
	ErrBackendRejected = NewBaseError(
		http.StatusBadGateway,
		"BACKEND_REJECTED",
		"The monitoring service rejected the request",
		"",
	)

	ErrBackendUnavailable = NewBaseError(
		http.StatusBadGateway,
		"BACKEND_UNAVAILABLE",
		"The monitoring service is unreachable",
		"",
	)

	ErrMalformedResponse = NewBaseError(
		http.StatusBadGateway,
		"MALFORMED_RESPONSE",
		"The monitoring service returned an unexpected response",
		"",
	)

	// Session store
	ErrSessionLoadFailed = NewBaseError(
		http.StatusInternalServerError,
		"SESSION_LOAD_FAILED",
		"Failed to load the saved session",
		"",
	)

	ErrSessionSaveFailed = NewBaseError(
		http.StatusInternalServerError,
		"SESSION_SAVE_FAILED",
		"Failed to persist the session",
		"",
	)

	// Live event channel
	ErrNoDevicePaired = NewBaseError(
		http.StatusConflict,
		"NO_DEVICE_PAIRED",
		"No sensor device is paired with this account",
		"",
	)

	ErrNoLocationAvailable = NewBaseError(
		http.StatusNotFound,
		"NO_LOCATION_AVAILABLE",
		"No fall location has been received yet",
		"",
	)

	// Alerts
	ErrAlertNotFound = NewBaseError(
		http.StatusNotFound,
		"ALERT_NOT_FOUND",
		"No pending alert with that identifier",
		"",
	)

	// Validation
	ErrValidation = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"The submitted data is incomplete or invalid",
		"",
	)
)
