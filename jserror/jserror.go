// Package jserror implements the engine's error taxonomy and throw-signal
// propagation (spec.md §7): TypeError/RangeError/ReferenceError/SyntaxError
// plus the host/internal depth-guard and timeout conditions, with the
// two-layer silent-vs-throwing design called out in spec.md §9.
package jserror

import (
	"fmt"

	"github.com/go-ecma/engine/errext"
	"github.com/go-ecma/engine/errext/exitcodes"
	"github.com/go-ecma/engine/value"
)

// Kind enumerates the error taxonomy from spec.md §7.
type Kind uint8

const (
	TypeError Kind = iota
	RangeError
	ReferenceError
	SyntaxError
	Internal
)

func (k Kind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case RangeError:
		return "RangeError"
	case ReferenceError:
		return "ReferenceError"
	case SyntaxError:
		return "SyntaxError"
	case Internal:
		return "InternalError"
	default:
		return "Error"
	}
}

// Error is the engine-internal representation of a thrown value (spec.md
// §7 "throw signal"): Payload carries the arbitrary thrown value when
// HasPayload is set (for `throw 42` this is a number, not necessarily an
// Error object; for realm.Throw it is the realm-bound error object), and
// Kind and Message are set when the engine itself constructed the throw
// from a built-in check.
type Error struct {
	Kind    Kind
	Message string
	Payload value.Value
	HasPayload bool

	stack string
	abort errext.AbortReason
}

// New constructs an engine-raised throw signal of the given kind. The
// Payload is left unset; callers that need a realm-bound Error object
// should use realm.Throw instead (jserror has no realm dependency, to
// avoid an import cycle).
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithPayload attaches the arbitrary thrown value (e.g. a constructed
// ECMAScript Error object, or any other thrown value for a bare `throw`).
func (e *Error) WithPayload(v value.Value) *Error {
	e.Payload = v
	e.HasPayload = true
	return e
}

// WithStack attaches a rendered stack trace, surfaced via StackTrace()
// for errext.Format/Fprint at the host boundary.
func (e *Error) WithStack(stack string) *Error {
	e.stack = stack
	return e
}

// WithAbortReason marks e as having stopped engine execution outright
// (depth guard / timeout), surfaced via AbortReason() for errext.
func (e *Error) WithAbortReason(reason errext.AbortReason) *Error {
	e.abort = reason
	return e
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// StackTrace implements errext.HasStackTrace.
func (e *Error) StackTrace() string {
	if e.stack == "" {
		return e.Error()
	}
	return e.stack
}

// AbortReason implements errext.HasAbortReason.
func (e *Error) AbortReason() errext.AbortReason { return e.abort }

// DepthGuardExceeded builds the "Host/internal" error for spec.md §4.6's
// PromiseCallDepth guard.
func DepthGuardExceeded(max int) error {
	return errext.WithExitCodeIfNone(
		(&Error{Kind: Internal, Message: fmt.Sprintf("maximum promise call depth (%d) exceeded", max)}).
			WithAbortReason(errext.AbortReasonDepthGuard),
		exitcodes.DepthGuardExceeded,
	)
}

// ExecutionTimeout builds the "Host/internal" error for spec.md §5's
// ExecutionTimeout.
func ExecutionTimeout() error {
	return errext.WithExitCodeIfNone(
		(&Error{Kind: Internal, Message: "execution timeout exceeded"}).
			WithAbortReason(errext.AbortReasonTimeout),
		exitcodes.ExecutionTimeout,
	)
}
