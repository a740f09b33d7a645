package engine

import (
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/promise"
	"github.com/go-ecma/engine/realm"
	"github.com/go-ecma/engine/value"
)

// ThrownValue is the engine-level representation of `throw expr;`: spec.md
// §7 says a throw signal carries "any value," not necessarily an Error
// object, so this wraps the literal thrown value rather than forcing it
// through jserror.Error's Kind/Message shape.
type ThrownValue struct {
	Value value.Value
}

func (t ThrownValue) Error() string { return "uncaught thrown value" }

// errorToValue converts any error raised while evaluating a try block
// into the value a catch clause's parameter should bind to: a ThrownValue
// unwraps to its literal payload, a *jserror.Error becomes its payload or
// a new realm Error object of its Kind, and anything else is handed to
// promise.ErrorToValue (the same conversion the scheduler/promise
// machinery already uses for an uncaught rejection, so a value thrown
// synchronously and one surfacing from a rejected awaited promise render
// identically).
func errorToValue(r *realm.Realm, err error) value.Value {
	if tv, ok := err.(ThrownValue); ok {
		return tv.Value
	}
	if je, ok := err.(*jserror.Error); ok {
		if je.HasPayload {
			return je.Payload
		}
		return r.NewError(je.Kind, je.Message)
	}
	return promise.ErrorToValue(err)
}
