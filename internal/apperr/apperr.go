// Package apperr classifies failures so handlers can translate them into a
// single HTTP error shape.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a failure class.
type Code string

const (
	// CodeValidation indicates a missing or malformed required field.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound indicates the delete or update target does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeUpstream indicates the store or an external API failed.
	CodeUpstream Code = "UPSTREAM"
	// CodeInternal indicates anything else.
	CodeInternal Code = "INTERNAL"
)

// Error carries a code, the message shown to the caller and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps cause with a code and a caller-facing message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a validation failure.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound creates a not-found failure.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Upstream wraps a store or external API failure. The message is what the
// caller sees; an empty message surfaces the cause text instead.
func Upstream(message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return Wrap(CodeUpstream, message, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message of err. Errors outside the
// taxonomy surface their own text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
