package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryLoad     Category = "load"
	CategoryLoader   Category = "loader"
	CategoryProtocol Category = "protocol"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// ShellError is a structured error with a code, explanation and fix hint.
type ShellError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (config, load, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ShellError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ShellError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *ShellError) WithDetail(d string) *ShellError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *ShellError) WithDetailf(format string, args ...any) *ShellError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ShellError) WithSuggestion(s string) *ShellError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *ShellError) Wrap(err error) *ShellError {
	e.Wrapped = err
	return e
}

// New creates a ShellError from a registered error code.
func New(code string) *ShellError {
	template, ok := registry[code]
	if !ok {
		return &ShellError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ShellError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new ShellError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ShellError {
	return &ShellError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ShellError.
// Errors that already contain a ShellError are returned unchanged.
func FromError(err error, code string) *ShellError {
	if err == nil {
		return nil
	}
	var se *ShellError
	if errors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err contains a ShellError with the given code.
// Joined errors are searched depth first.
func HasCode(err error, code string) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *ShellError:
		if e.Code == code {
			return true
		}
		return HasCode(e.Wrapped, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
		return false
	default:
		return HasCode(errors.Unwrap(err), code)
	}
}
