// Package errors provides standardized error types for the Meltano API client.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for client-side and backend-reported failures.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeTransportFailed  = "TRANSPORT_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeBackendError     = "BACKEND_ERROR"
	CodeDecodeFailed     = "DECODE_FAILED"
	CodeCanceled         = "CANCELED"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError represents a client or backend error with code, message, and
// the raw error body returned by the backend, if any.
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Body       []byte                 `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value interface{}) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrEmptyIdentifier = &APIError{Code: CodeInvalidRequest, Message: "identifier must not be empty"}
	ErrDesignNotFound  = &APIError{Code: CodeNotFound, Message: "design not found"}
	ErrTableNotFound   = &APIError{Code: CodeNotFound, Message: "table not found"}
	ErrUnauthorized    = &APIError{Code: CodeUnauthorized, Message: "authentication required"}
)

// New creates a new APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an APIError.
func Wrap(err error, code, message string) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *APIError {
	if err == nil {
		return nil
	}
	return &APIError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// FromStatus maps an HTTP status code to an APIError carrying the raw
// response body. The body is preserved verbatim for the caller.
func FromStatus(status int, body []byte) *APIError {
	var code string
	switch {
	case status == 401:
		code = CodeUnauthorized
	case status == 403:
		code = CodePermissionDenied
	case status == 404:
		code = CodeNotFound
	case status >= 400 && status < 500:
		code = CodeInvalidRequest
	default:
		code = CodeBackendError
	}
	return &APIError{
		Code:       code,
		Message:    fmt.Sprintf("backend returned status %d", status),
		StatusCode: status,
		Body:       body,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeNotFound
	}
	return false
}

// IsTransport checks if an error is a transport failure.
func IsTransport(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeTransportFailed
	}
	return false
}

// IsInvalidRequest checks if an error is an invalid request error.
func IsInvalidRequest(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeInvalidRequest
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

// GetStatus extracts the HTTP status code from an error, or 0 when the
// error did not originate from an HTTP response.
func GetStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
