// Package apperr defines the error kinds the API distinguishes between.
// Handlers map kinds to HTTP statuses; everything else is a plain internal
// error. Degraded is special: search-family endpoints never surface it to
// the caller, they log it and fall back instead.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the failure class of an error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindDuplicateName
	KindDegraded
)

// Error carries a kind, a human-readable message, and an optional cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or out-of-range structural input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports an actor lacking permission for the operation.
// Distinct from Validation: the request was well-formed but forbidden.
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent referenced entity.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateName reports a saved-search name collision.
func DuplicateName(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicateName, Message: fmt.Sprintf(format, args...)}
}

// Degraded wraps an internal plan-construction or execution failure that
// must trigger the fallback path rather than a caller-visible error.
func Degraded(msg string, cause error) *Error {
	return &Error{Kind: KindDegraded, Message: msg, Err: cause}
}

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error kind to the response status. Degraded maps to
// 500 here, but search handlers are expected to have consumed it before
// this point.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
