// Package errors defines the coded application errors used across avitobridge.
// Codes end up in relay reports, the run history store and metric labels.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeAPI        = "API"
	CodeDecode     = "DECODE"
	CodeSink       = "SINK"
	CodeConfig     = "CONFIG"
	CodeDatabase   = "DATABASE"
	CodeValidation = "VALIDATION"
	CodeCanceled   = "CANCELED"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// CodeCanceled for context cancellation, or CodeUnknown otherwise.
func Code(err error) string {
	if err == nil {
		return ""
	}

	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}

	return CodeUnknown
}

// APIError is returned by the source API client. StatusCode is zero for
// transport failures that never produced a response.
type APIError struct {
	base       Error
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.base.Error(), e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s (%s)", e.base.Error(), e.Endpoint)
}

func (e *APIError) Code() string {
	return e.base.Code()
}

func (e *APIError) Unwrap() error {
	return e.base.Unwrap()
}

func NewAPIError(endpoint string, statusCode int, message string, cause error) error {
	return &APIError{
		base: Error{
			code:    CodeAPI,
			message: message,
			err:     cause,
		},
		StatusCode: statusCode,
		Endpoint:   endpoint,
	}
}

func NewDecodeError(message string, cause error) error {
	return &Error{code: CodeDecode, message: message, err: cause}
}

func NewSinkError(message string, cause error) error {
	return &Error{code: CodeSink, message: message, err: cause}
}

func NewConfigError(message string, cause error) error {
	return &Error{code: CodeConfig, message: message, err: cause}
}

func NewDatabaseError(message string, cause error) error {
	return &Error{code: CodeDatabase, message: message, err: cause}
}

func NewValidationError(message string, cause error) error {
	return &Error{code: CodeValidation, message: message, err: cause}
}

// Is, As and New re-export the standard library helpers so callers that
// import this package under the name errors keep access to them.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
