package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error reported by the helpdesk backend.
type APIError struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend error (%d): %s - %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// Is matches the status-code sentinels below, so callers can write
// errors.Is(err, apiclient.ErrNotFound) against any *APIError.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == codeForStatus(e.StatusCode)
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, message, code, details string) *APIError {
	if code == "" {
		code = codeForStatus(statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
		Details:    details,
	}
}

var (
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized", Code: "UNAUTHORIZED"}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden, Message: "Forbidden", Code: "FORBIDDEN"}
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound, Message: "Resource not found", Code: "NOT_FOUND"}
	ErrBadRequest   = &APIError{StatusCode: http.StatusBadRequest, Message: "Bad request", Code: "BAD_REQUEST"}
	ErrRateLimited  = &APIError{StatusCode: http.StatusTooManyRequests, Message: "Rate limit exceeded", Code: "RATE_LIMITED"}
	ErrInternal     = &APIError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", Code: "INTERNAL_SERVER_ERROR"}
)

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "BAD_REQUEST"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= 500 {
		return "INTERNAL_SERVER_ERROR"
	}
	return ""
}

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }

// NetworkError represents a transport failure before any response was read.
type NetworkError struct {
	Operation string
	URL       string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s %s: %v", e.Operation, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err (or anything it wraps) is a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// FieldErrors returns the per-field messages the backend attached to a
// validation failure, or nil.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
