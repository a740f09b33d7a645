package engine

import "github.com/go-ecma/engine/value"

// The evaluator threads non-local control flow (return/break/continue)
// back up through ordinary Go error returns rather than extra result
// fields at every call site — the idiomatic Go rendering of ECMA-262's
// "statement completion record" (normal/break/continue/return/throw),
// collapsing five completion kinds into "value+nil" for normal and these
// three sentinel types (plus ThrownValue, see errors.go) for the rest.
type returnSignal struct{ value value.Value }

func (returnSignal) Error() string { return "return" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

// isControlSignal reports whether err is one of the non-local-control-flow
// sentinels above rather than an actual thrown error — a try block's catch
// clause only ever catches a throw, never a break/continue/return escaping
// through it (ECMA-262 §14.15.1's TryStatement evaluation never routes
// those completion kinds through Catch).
func isControlSignal(err error) bool {
	switch err.(type) {
	case breakSignal, continueSignal, returnSignal:
		return true
	default:
		return false
	}
}
