// Package errors defines the error taxonomy shared by metadata lookups and the
// book catalog.
//
// Every failure surfaced to a caller is an *Error carrying a Code. Callers
// match on the sentinels with errors.Is:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // nothing stored under that id, or no provider record for the ISBN
//	}
//
// or switch on the code directly:
//
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeIncompleteData:
//	        fmt.Println("missing:", domainErr.Details)
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Re-export standard library functions for convenience.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Code is a machine-readable error category.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeIncompleteData Code = "INCOMPLETE_DATA"
	CodeTransport      Code = "TRANSPORT"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	CodeStorage        Code = "STORAGE"
)

// HTTPStatus returns the HTTP status used when the error reaches the API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeIncompleteData:
		return http.StatusUnprocessableEntity
	case CodeTransport:
		return http.StatusBadGateway
	case CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized failure. Provider is set for lookup errors.
type Error struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
	Details  any    `json:"details,omitempty"`
	cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Provider != "" {
		sb.WriteString(e.Provider)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code, so the sentinels below work with
// errors.Is regardless of message or provider.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithProvider returns a copy of e attributed to provider.
func (e *Error) WithProvider(provider string) *Error {
	c := *e
	c.Provider = provider
	return &c
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrIncompleteData = &Error{Code: CodeIncompleteData, Message: "incomplete data"}
	ErrTransport      = &Error{Code: CodeTransport, Message: "transport error"}
	ErrNotImplemented = &Error{Code: CodeNotImplemented, Message: "not implemented"}
	ErrStorage        = &Error{Code: CodeStorage, Message: "storage error"}
)

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field messages.
func ValidationWithDetails(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: fields}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// IncompleteData creates an error naming the fields a record was missing.
func IncompleteData(provider string, missing []string) *Error {
	return &Error{
		Code:     CodeIncompleteData,
		Message:  fmt.Sprintf("record is missing required fields [%s]", strings.Join(missing, ", ")),
		Provider: provider,
		Details:  missing,
	}
}

// Transport wraps a network, HTTP status or decoding failure from provider.
func Transport(provider string, cause error) *Error {
	return &Error{Code: CodeTransport, Message: "request failed", Provider: provider, cause: cause}
}

// NotImplemented reports a provider integration that cannot issue requests.
func NotImplemented(provider string) *Error {
	return &Error{Code: CodeNotImplemented, Message: "integration is not implemented", Provider: provider}
}

// Storage wraps a database failure verbatim.
func Storage(op string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: op, cause: cause}
}

// MissingFields returns the field names carried by an incomplete-data error.
func MissingFields(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Code == CodeIncompleteData {
		if missing, ok := e.Details.([]string); ok {
			return missing
		}
	}
	return nil
}

// IsValidation reports whether err is a validation error (even when wrapped).
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a not found error (even when wrapped).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsIncompleteData reports whether err is an incomplete-data error.
func IsIncompleteData(err error) bool { return errors.Is(err, ErrIncompleteData) }

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// IsNotImplemented reports whether err is a not-implemented error.
func IsNotImplemented(err error) bool { return errors.Is(err, ErrNotImplemented) }

// IsStorage reports whether err is a storage error.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

// CodeOf returns the code of err, or CodeStorage for uncategorized errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorage
}
