package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidModel       = errors.New("invalid model")
	ErrNetwork            = errors.New("network error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed provider response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeAuth              ErrorCode = "authentication_failed"
	ErrorCodePermission        ErrorCode = "permission_denied"
	ErrorCodeRateLimit         ErrorCode = "rate_limit"
	ErrorCodeInvalidRequest    ErrorCode = "invalid_request"
	ErrorCodeInvalidModel      ErrorCode = "invalid_model"
	ErrorCodeNetwork           ErrorCode = "network_error"
	ErrorCodeUnavailable       ErrorCode = "service_unavailable"
	ErrorCodeMalformedResponse ErrorCode = "malformed_response"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}
