package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable, machine-readable classification of a pipeline
// failure. Codes are part of the HTTP contract and must not be renamed.
type ErrorCode string

const (
	ErrInvalidInput        ErrorCode = "invalid_input"
	ErrNotFound            ErrorCode = "not_found"
	ErrAccessDenied        ErrorCode = "access_denied"
	ErrUnsupportedDocument ErrorCode = "unsupported_document"
	ErrExtractionFailed    ErrorCode = "extraction_failed"
	ErrTimeout             ErrorCode = "timeout"
	ErrInternal            ErrorCode = "internal"
)

// Error carries a classified failure across the pipeline boundary. It wraps
// the underlying cause so call sites can still use errors.Is on it.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error wrapping cause. cause may be nil.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// Errorf builds a classified error with a formatted message and no cause.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the classification of err, or ErrInternal if err carries
// none.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrInternal
}

// MessageOf returns the human-readable message of a classified error, or a
// generic message for unclassified ones so internal details never leak into
// HTTP responses.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error code to its HTTP response status.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAccessDenied:
		return http.StatusForbidden
	case ErrUnsupportedDocument:
		return http.StatusUnprocessableEntity
	case ErrExtractionFailed:
		return http.StatusBadGateway
	case ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
