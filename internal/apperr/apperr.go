// Package apperr defines the error taxonomy shared by the battle and
// progression core. Core operations return one of these kinds instead of
// raising transport-level errors; the API layer maps kinds to HTTP
// status codes and worker jobs use the kind to decide retryability.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"    // malformed/missing input (empty deck, bad slot)
	KindConflict     Kind = "conflict"      // state precondition violated (duplicate active battle)
	KindNotFound     Kind = "not_found"     // referenced entity absent
	KindInsufficient Kind = "insufficient"  // resource exhausted (energy, sparks)
	KindInvalidState Kind = "invalid_state" // illegal transition on a terminal entity
	KindInternal     Kind = "internal"
)

// Error carries a kind plus a user-presentable message. The wrapped
// cause (if any) is for logs only and never reaches clients.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Insufficient(msg string) *Error { return New(KindInsufficient, msg) }
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }
func Internal(msg string, cause error) *Error {
	return Wrap(KindInternal, msg, cause)
}

// KindOf extracts the kind from err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Retryable reports whether a worker job failing with err should retry.
// Only internal (transient) failures retry; taxonomy errors are terminal:
// the entity is gone or the request can never succeed as issued.
func Retryable(err error) bool {
	return KindOf(err) == KindInternal
}
