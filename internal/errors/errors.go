package errors

import (
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors (401xx)
	ErrUnauthenticated    ErrorCode = "40101"
	ErrInvalidCredentials ErrorCode = "40102"
	ErrTokenExpired       ErrorCode = "40103"

	// Authorization errors (403xx)
	ErrUnauthorized ErrorCode = "40301"

	// Resource errors (404xx)
	ErrNotFound ErrorCode = "40401"

	// Request errors (400xx)
	ErrInvalidRequest   ErrorCode = "40001"
	ErrValidationFailed ErrorCode = "40002"

	// State errors (409xx)
	ErrInvalidState ErrorCode = "40901"
	ErrConflict     ErrorCode = "40902"

	// Rate limit errors (429xx)
	ErrRateLimited ErrorCode = "42901"

	// Server errors (500xx)
	ErrPersistence    ErrorCode = "50001"
	ErrInternalServer ErrorCode = "50002"
)

// APIError represents a standardized API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents the error response format
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id"`
}

// Common errors
var (
	ErrUnauthenticatedError = &APIError{
		Code:       ErrUnauthenticated,
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentialsError = &APIError{
		Code:       ErrInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpiredError = &APIError{
		Code:       ErrTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUnauthorizedError = &APIError{
		Code:       ErrUnauthorized,
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	ErrNotFoundError = &APIError{
		Code:       ErrNotFound,
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRateLimitedError = &APIError{
		Code:       ErrRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// Persistence failures return a generic retry message so internal
	// diagnostics never reach the caller.
	ErrPersistenceError = &APIError{
		Code:       ErrPersistence,
		Message:    "Something went wrong, please try again",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInternalServerError = &APIError{
		Code:       ErrInternalServer,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// NewValidationError creates a validation error with details
func NewValidationError(details any) *APIError {
	return &APIError{
		Code:       ErrValidationFailed,
		Message:    "Validation failed",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not-found error naming the missing resource
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       ErrNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInvalidStateError creates an error for a transition not permitted
// from the current workflow status
func NewInvalidStateError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidState,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConflictError creates a uniqueness-violation error
func NewConflictError(message string) *APIError {
	return &APIError{
		Code:       ErrConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}
