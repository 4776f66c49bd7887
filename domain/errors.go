package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a semantic classification shared across client layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and message so wrapped copies still
// satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrKeyNotFound          = NewError(ErrCodeNotFound, "key not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrNotAuthenticated     = NewError(ErrCodeUnauthorized, "not logged in")
	ErrSessionExpired       = NewError(ErrCodeUnauthorized, "session expired")
	ErrAuthenticationFailed = NewError(ErrCodeUnauthorized, "authentication failed")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return CodeForStatus(apiErr.Status) == code
	}
	return false
}

// APIError is a non-2xx answer from the backend. Detail holds the
// human-readable "detail" field when the backend supplied one.
type APIError struct {
	Status int
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// IsUnauthorized reports whether the backend rejected the credential.
func (e *APIError) IsUnauthorized() bool {
	return e != nil && e.Status == http.StatusUnauthorized
}

// CodeForStatus maps an HTTP status onto the domain taxonomy.
func CodeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrCodeInvalid
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// Reason extracts the message a user should see for err: the backend detail
// when present, otherwise fallback.
func Reason(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
