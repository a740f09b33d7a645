package realm

import (
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/promise"
	"github.com/go-ecma/engine/value"
)

// PromiseObject is the script-visible wrapper around a promise.Promise
// (spec.md §4.6's state machine), giving it the object identity/prototype
// chain the rest of the object model expects. The state machine itself is
// untouched; this type only bridges it to the object protocol.
type PromiseObject struct {
	*object.Ordinary
	P *promise.Promise
}

func (r *Realm) newPromiseObject() *PromiseObject {
	po := &PromiseObject{Ordinary: object.NewOrdinary(r.PromiseProto), P: promise.New(r.Scheduler)}
	po.Ordinary.SetClass("Promise")
	return po
}

// NewPromise wraps an already-constructed promise.Promise as a Value
// (used by host APIs — e.g. a future async/await lowering — that produce
// a promise.Promise directly rather than going through the `new Promise`
// constructor).
func (r *Realm) NewPromise(p *promise.Promise) value.Value {
	po := &PromiseObject{Ordinary: object.NewOrdinary(r.PromiseProto), P: p}
	po.Ordinary.SetClass("Promise")
	return value.Object(r.Arena.Alloc(po))
}

// ResolvedPromise and RejectedPromise mirror promise.Resolved/Rejected at
// the Value level.
func (r *Realm) ResolvedPromise(v value.Value) value.Value {
	return r.NewPromise(promise.Resolved(r.Scheduler, v))
}

func (r *Realm) RejectedPromise(reason value.Value) value.Value {
	return r.NewPromise(promise.Rejected(r.Scheduler, reason))
}

func (r *Realm) installPromise() {
	ctor := NewHostFunction(r, "Promise", 1, true, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		po := r.newPromiseObject()
		ref := r.Arena.Alloc(po)
		pv := value.Object(ref)

		executor := arg(args, 0)
		resolveFn := NewHostFunction(r, "", 1, false, func(_ *Realm, _ value.Value, a []value.Value) (value.Value, error) {
			po.P.Resolve(arg(a, 0))
			return value.Undefined, nil
		})
		rejectFn := NewHostFunction(r, "", 1, false, func(_ *Realm, _ value.Value, a []value.Value) (value.Value, error) {
			po.P.Reject(arg(a, 0))
			return value.Undefined, nil
		})

		if _, err := r.Call(executor, value.Undefined, []value.Value{
			value.Object(r.Arena.Alloc(resolveFn)),
			value.Object(r.Arena.Alloc(rejectFn)),
		}); err != nil {
			if te, ok := err.(*promise.ThrownError); ok {
				po.P.Reject(te.Value)
			} else {
				po.P.Reject(promise.ErrorToValue(err))
			}
		}
		return pv, nil
	})
	_, _ = ctor.Ordinary.Define(nil, fnPrototypeKey, object.DataDescriptor(r.PromiseProto, false, false, false))
	_ = r.SetGlobal("Promise", value.Object(r.Arena.Alloc(ctor)))

	protoObj := r.Arena.Resolve(r.PromiseProto)
	installMethod(r, protoObj, "then", 2, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		po, err := r.asPromiseObject(this)
		if err != nil {
			return value.Value{}, err
		}
		onFulfilled := toHandler(r, arg(args, 0))
		onRejected := toHandler(r, arg(args, 1))
		down := po.P.Then(onFulfilled, onRejected)
		return r.NewPromise(down), nil
	})
	installMethod(r, protoObj, "catch", 1, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		po, err := r.asPromiseObject(this)
		if err != nil {
			return value.Value{}, err
		}
		down := po.P.Catch(toHandler(r, arg(args, 0)))
		return r.NewPromise(down), nil
	})
}

func (r *Realm) asPromiseObject(v value.Value) (*PromiseObject, error) {
	if v.IsObject() {
		if po, ok := r.Arena.Resolve(v).(*PromiseObject); ok {
			return po, nil
		}
	}
	return nil, r.Throw(jserror.TypeError, "receiver is not a Promise")
}

// toHandler adapts a script callable (or Undefined, for a missing
// then/catch handler) into a promise.Handler.
func toHandler(r *Realm, v value.Value) promise.Handler {
	if !v.IsObject() {
		return nil
	}
	fn, ok := r.Arena.Resolve(v).(*Function)
	if !ok {
		return nil
	}
	return func(in value.Value) (value.Value, error) {
		out, err := fn.Call(value.Undefined, []value.Value{in})
		if err != nil {
			if te, ok := err.(*promise.ThrownError); ok {
				return value.Value{}, te
			}
			return value.Value{}, &promise.ThrownError{Value: promise.ErrorToValue(err)}
		}
		return out, nil
	}
}
