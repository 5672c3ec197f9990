// Package errors defines the coded error type shared by the allocation
// engine and its command-line surface.
package errors

import (
	"maps"
)

// Domain is the error domain for allocation engine errors.
const Domain = "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002"

// Error is a coded failure. Two Errors are equal under errors.Is when their
// codes match, so package-level sentinels can be returned with extra detail.
type Error struct {
	Code    Code
	Message string // internal; user text comes from the i18n catalog
	// Metadata fills the catalog template, e.g. {"power": "quick_jab"}.
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// New returns an Error without metadata or cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns an Error caused by err.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// Detail returns a copy of e with metadata merged over e's own.
func (e *Error) Detail(metadata map[string]string) *Error {
	merged := make(map[string]string, len(e.Metadata)+len(metadata))
	maps.Copy(merged, e.Metadata)
	maps.Copy(merged, metadata)
	return &Error{
		Code:     e.Code,
		Message:  e.Message,
		Metadata: merged,
		Cause:    e.Cause,
	}
}
