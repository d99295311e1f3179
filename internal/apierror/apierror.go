// Package apierror provides standardized error kinds and response structures
// for the API. All errors returned to clients go through this package to
// ensure consistency and to prevent leaking internal details (stack traces,
// DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service-layer error so the HTTP layer can pick a status
// code without string matching.
type Kind int

const (
	KindValidation        Kind = iota // malformed/missing input, bad date/time format
	KindNotFound                      // entity id absent
	KindForbidden                     // role/ownership mismatch
	KindConflict                      // slot occupied, duplicate cnpj/email
	KindInvalidTransition             // state machine violation
	KindStorage                       // transaction failure — surfaced as generic 500
)

// Error is the canonical service error. Message is safe to show to clients;
// Err (optional) carries the internal cause for logging only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error        { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error          { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error         { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error          { return &Error{Kind: KindConflict, Message: msg} }
func InvalidTransition(msg string) *Error { return &Error{Kind: KindInvalidTransition, Message: msg} }

// Storage wraps a repository/transaction failure. The internal cause never
// reaches the client.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "Internal server error", Err: err}
}

// Status maps an error to its HTTP status code. Unknown errors are treated as
// storage failures.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an apierror with the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}
