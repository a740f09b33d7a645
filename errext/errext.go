// Package errext supplies host-facing error annotations: hints, exit
// codes, and a stack-trace/abort-reason contract that errors crossing the
// evaluate() boundary can optionally implement.
package errext

import (
	"errors"

	"github.com/go-ecma/engine/errext/exitcodes"
)

// AbortReason describes why an engine run stopped early, for errors that
// implement HasAbortReason.
type AbortReason uint8

const (
	// AbortReasonNone means the error carries no specific abort reason.
	AbortReasonNone AbortReason = iota
	// AbortReasonDepthGuard means a promise/thenable recursion cap was hit.
	AbortReasonDepthGuard
	// AbortReasonTimeout means the engine-wide execution deadline elapsed.
	AbortReasonTimeout
)

// HasHint is implemented by errors carrying a human-facing remediation hint.
type HasHint interface {
	error
	Hint() string
}

// HasExitCode is implemented by errors that should map to a specific
// process exit code at the host boundary.
type HasExitCode interface {
	error
	ExitCode() exitcodes.ExitCode
}

// HasStackTrace is implemented by errors carrying an engine stack trace
// (e.g. an uncaught ECMAScript throw signal).
type HasStackTrace interface {
	error
	StackTrace() string
}

// HasAbortReason is implemented by errors that stopped the engine early.
type HasAbortReason interface {
	error
	AbortReason() AbortReason
}

type hintedError struct {
	err  error
	hint string
}

func (e hintedError) Error() string { return e.err.Error() }
func (e hintedError) Unwrap() error { return e.err }
func (e hintedError) Hint() string  { return e.hint }

// WithHint wraps err with a hint, composing with any hint already present
// on err so repeated wrapping reads as "outermost (inner (innermost))".
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	var existing HasHint
	if errors.As(err, &existing) {
		hint = hint + " (" + existing.Hint() + ")"
	}
	return hintedError{err: err, hint: hint}
}

type exitCodeError struct {
	err  error
	code exitcodes.ExitCode
}

func (e exitCodeError) Error() string               { return e.err.Error() }
func (e exitCodeError) Unwrap() error                { return e.err }
func (e exitCodeError) ExitCode() exitcodes.ExitCode { return e.code }

// WithExitCodeIfNone wraps err with code, unless err already carries an
// exit code somewhere in its chain, in which case err is returned as-is.
func WithExitCodeIfNone(err error, code exitcodes.ExitCode) error {
	if err == nil {
		return nil
	}
	var existing HasExitCode
	if errors.As(err, &existing) {
		return err
	}
	return exitCodeError{err: err, code: code}
}
