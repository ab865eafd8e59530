// Package domainerrors defines the error taxonomy shared by all services.
//
// Every error that crosses a layer boundary carries a Code. Transport layers
// map the code to a status and a wire body; services use HasCode to branch on
// the cause without string matching. Wrap preserves the underlying error so
// errors.Is and errors.As keep working across layers.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error. The value doubles as the wire representation
// written by httputil.WriteError.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Error is a coded error. Message is safe to return to callers for every
// code except CodeInternal, whose details stay in the logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New returns a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap returns a coded error that records err as its cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
