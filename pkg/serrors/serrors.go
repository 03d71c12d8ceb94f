// Package serrors attaches semantic kinds to errors. The resolver reports
// failures with a kind and the HTTP layer turns kinds into status codes, so
// neither needs to know the concrete cause.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category created with NewKind. Kinds are
// comparable sentinels usable with errors.Is and errors.As.
type Kind interface {
	error
	isKind()
}

type kind struct{ name string }

func (k kind) Error() string { return k.name }
func (k kind) isKind()       {}

// NewKind creates a kind identified by name.
func NewKind(name string) Kind { return kind{name: name} }

var (
	// ErrNotFound means every lookup was exhausted without a result.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrTimeout means the operation ran out of time or its caller went away.
	ErrTimeout = NewKind("TIMEOUT")
)

// Error carries a kind, a message and an optional cause.
//
// errors.Is and errors.As match either the kind or anything in the cause
// chain. Error() renders "msg: cause", falling back to whichever part is set
// and finally to the kind name.
type Error struct {
	kind  Kind
	cause error
	msg   string
}

// With creates an error of kind k with a formatted message.
func With(k Kind, format string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of kind k around cause, with a formatted message.
func Wrap(k Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: k, cause: cause, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.cause != nil:
		return e.msg + ": " + e.cause.Error()
	case e.msg != "":
		return e.msg
	case e.cause != nil:
		return e.cause.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the kind of e or is found in its cause chain.
func (e *Error) Is(target error) bool {
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.cause != nil && errors.Is(e.cause, target)
}

// As assigns the kind of e, or the first match in its cause chain, to target.
func (e *Error) As(target any) bool {
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.cause != nil && errors.As(e.cause, target)
}

// Kind returns the kind of e.
func (e *Error) Kind() Kind { return e.kind }

// KindOf returns the kind carried by err, or nil when it has none. A bare
// Kind sentinel is its own kind.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) && se.kind != nil {
		return se.kind
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}
