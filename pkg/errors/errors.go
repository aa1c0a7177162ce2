// Package errors provides structured error types for chartgen.
//
// Errors carry a machine-readable [Code] so the CLI can pick an exit code and
// the HTTP server a status code without string matching:
//
//	err := errors.New(errors.ErrCodeMissingOption, "Missing Echart Option")
//	if errors.Is(err, errors.ErrCodeMissingOption) {
//	    // exit 1
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidOption, cause, "Invalid Echart Option")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors, resolved before any rendering starts
	ErrCodeMissingOption Code = "MISSING_OPTION"
	ErrCodeInvalidOption Code = "INVALID_OPTION"
	ErrCodeInvalidSize   Code = "INVALID_SIZE"

	// Output errors
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeNoEncoder         Code = "NO_ENCODER"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Causes flattens the cause of err into its individual messages.
// Causes joined with errors.Join are returned one per entry, in order.
func Causes(err error) []string {
	var e *Error
	if !errors.As(err, &e) || e.Cause == nil {
		return nil
	}
	if joined, ok := e.Cause.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, c := range joined.Unwrap() {
			if c != nil {
				msgs = append(msgs, c.Error())
			}
		}
		return msgs
	}
	return []string{e.Cause.Error()}
}
