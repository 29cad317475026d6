// Package apperr defines the error kinds shared by the session, remote client
// and view layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to react to it.
type Kind int

const (
	// Unknown is returned by KindOf for errors that are not *Error.
	Unknown Kind = iota
	// AuthRequired means there is no session token or the remote rejected it.
	AuthRequired
	// NetworkFailure means the remote was unreachable, answered non-2xx or sent a malformed body.
	NetworkFailure
	// ValidationFailure means input was rejected before anything was sent.
	ValidationFailure
)

// kindMessages maps kinds to their default human-readable messages.
var kindMessages = map[Kind]string{
	Unknown:           "an unexpected error occurred",
	AuthRequired:      "authentication required",
	NetworkFailure:    "remote service unavailable",
	ValidationFailure: "invalid input",
}

func (k Kind) String() string {
	switch k {
	case AuthRequired:
		return "auth required"
	case NetworkFailure:
		return "network failure"
	case ValidationFailure:
		return "validation failure"
	}
	return "unknown"
}

// Message returns the default message for the kind.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[Unknown]
}

// Error is a classified error. Op names the operation that failed, e.g. "list transactions".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind.Message())
	}
	return e.Kind.Message()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
