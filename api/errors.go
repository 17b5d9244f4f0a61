// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-stream.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrOutOfMemory     = fmt.Errorf("out of memory")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrClosed          = fmt.Errorf("device is closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeOutOfMemory
	ErrCodeNotSupported
	ErrCodeClosed
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf classifies err. Unknown errors map to ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var se *Error
	switch {
	case err == nil:
		return ErrCodeOK
	case errors.As(err, &se) && se.Code != ErrCodeOK:
		return se.Code
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return ErrCodeOutOfMemory
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, ErrClosed):
		return ErrCodeClosed
	default:
		return ErrCodeInternal
	}
}

// Errno returns the negative numeric form of err used by the device runtime
// (0 for nil).
func Errno(err error) int {
	return -int(CodeOf(err))
}
