package types

import (
	"fmt"
	"net/http"
)

// ErrorCode categorizes provider errors
type ErrorCode string

const (
	ErrCodeUnknown        ErrorCode = "unknown"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeServerError    ErrorCode = "server_error"
	ErrCodeTimeout        ErrorCode = "timeout"
	ErrCodeNetwork        ErrorCode = "network"
	ErrCodeRateLimit      ErrorCode = "rate_limit"
)

// ProviderError represents a standardized error from a provider
type ProviderError struct {
	Code        ErrorCode    // Categorized error code
	Message     string       // Human-readable message
	StatusCode  int          // HTTP status code (0 if not applicable)
	Provider    ProviderType // Which provider generated this error
	Operation   string       // What operation failed (e.g. "chat_completion")
	OriginalErr error        // Wrapped original error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (status=%d, code=%s)", e.Provider, e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("[%s] %s (code=%s)", e.Provider, e.Message, e.Code)
}

// Unwrap returns the original error for errors.Is/As
func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns true if the error is potentially recoverable with retry
func (e *ProviderError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeServerError, ErrCodeTimeout, ErrCodeNetwork, ErrCodeRateLimit:
		return true
	}
	return false
}

// WithOperation sets the operation field and returns the error for chaining
func (e *ProviderError) WithOperation(operation string) *ProviderError {
	e.Operation = operation
	return e
}

// WithStatusCode sets the status code field and returns the error for chaining
func (e *ProviderError) WithStatusCode(statusCode int) *ProviderError {
	e.StatusCode = statusCode
	return e
}

// WithOriginalErr sets the original error field and returns the error for chaining
func (e *ProviderError) WithOriginalErr(err error) *ProviderError {
	e.OriginalErr = err
	return e
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider ProviderType, code ErrorCode, message string) *ProviderError {
	return &ProviderError{
		Code:     code,
		Message:  message,
		Provider: provider,
	}
}

// NewInvalidRequestError creates a new invalid request error
func NewInvalidRequestError(provider ProviderType, message string) *ProviderError {
	return NewProviderError(provider, ErrCodeInvalidRequest, message)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(provider ProviderType, message string) *ProviderError {
	return NewProviderError(provider, ErrCodeNotFound, message)
}

// NewServerError creates a new server error
func NewServerError(provider ProviderType, statusCode int, message string) *ProviderError {
	err := NewProviderError(provider, ErrCodeServerError, message)
	err.StatusCode = statusCode
	return err
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(provider ProviderType, message string) *ProviderError {
	return NewProviderError(provider, ErrCodeTimeout, message)
}

// NewNetworkError creates a new network error
func NewNetworkError(provider ProviderType, message string) *ProviderError {
	return NewProviderError(provider, ErrCodeNetwork, message)
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(provider ProviderType, message string) *ProviderError {
	return NewProviderError(provider, ErrCodeRateLimit, message)
}

// ClassifyHTTPError determines error code from HTTP status
func ClassifyHTTPError(statusCode int) ErrorCode {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	default:
		if statusCode >= 500 {
			return ErrCodeServerError
		}
		return ErrCodeUnknown
	}
}
