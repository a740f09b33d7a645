// Package realm implements spec.md §4.9's host-function and realm-state
// layer: intrinsic prototypes, the global object, call/apply/bind
// adapters, and the glue that wires the object and promise packages'
// callable-invocation hooks (object.CallGetter/CallSetterFn,
// promise.CheckThenable/ErrorToValue) to this package's actual function
// machinery, breaking the import-cycle stubs those packages ship with.
package realm

import (
	"github.com/go-ecma/engine/arraylib"
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/promise"
	"github.com/go-ecma/engine/value"
)

// Realm owns the object arena (spec.md §3 "arena + index handles") plus
// every intrinsic prototype and the global object: object.Ref handles
// minted by one realm are never valid against another's arena.
type Realm struct {
	Arena     *object.Arena
	Scheduler *promise.Scheduler

	ObjectProto   value.Value
	FunctionProto value.Value
	ArrayProto    value.Value
	ErrorProto    value.Value
	PromiseProto  value.Value

	errorProtos map[jserror.Kind]value.Value

	globalRef value.Ref
	Global    value.Value
}

const denseThresholdDefault = 1_000_000

// New builds a realm: arena, scheduler, intrinsic prototypes, global
// object, and wires the cross-package callable hooks to this realm.
// denseThreshold of 0 uses arraylib's own default.
func New(denseThreshold uint32) *Realm {
	r := &Realm{
		Arena:       object.NewArena(),
		Scheduler:   promise.NewScheduler(),
		errorProtos: map[jserror.Kind]value.Value{},
	}

	r.ObjectProto = value.Object(r.Arena.Alloc(object.NewOrdinary(value.Null)))

	funcProto := newFunction(r.ObjectProto, "", 0)
	fn := &Function{realm: r, name: "", handler: func(*Realm, value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, nil
	}}
	fn.Ordinary = funcProto
	r.FunctionProto = value.Object(r.Arena.Alloc(fn))

	arrProto := arraylib.New(r.ObjectProto)
	if denseThreshold != 0 {
		arrProto.WithDenseThreshold(denseThreshold)
	}
	r.ArrayProto = value.Object(r.Arena.Alloc(arrProto))

	r.ErrorProto = r.newErrorProto(r.ObjectProto, "Error")
	r.errorProtos[jserror.Internal] = r.ErrorProto
	for _, kind := range []jserror.Kind{jserror.TypeError, jserror.RangeError, jserror.ReferenceError, jserror.SyntaxError} {
		r.errorProtos[kind] = r.newErrorProto(r.ErrorProto, kind.String())
	}

	r.PromiseProto = value.Object(r.Arena.Alloc(object.NewOrdinary(r.ObjectProto)))

	global := object.NewOrdinary(r.ObjectProto)
	r.globalRef = r.Arena.Alloc(global)
	r.Global = value.Object(r.globalRef)

	r.installFunctionProto()
	r.installObjectStatics()
	r.installErrorConstructors()
	r.installPromise()
	r.wireHooks()

	return r
}

func (r *Realm) newErrorProto(parent value.Value, name string) value.Value {
	p := object.NewOrdinary(parent)
	_, _ = p.Define(nil, object.StringKey("name"), object.DataDescriptor(value.String(name), true, false, true))
	_, _ = p.Define(nil, object.StringKey("message"), object.DataDescriptor(value.String(""), true, false, true))
	return value.Object(r.Arena.Alloc(p))
}

// wireHooks binds object.CallGetter/CallSetterFn and
// promise.CheckThenable/ErrorToValue to this realm's Call machinery. These
// remain Go package-level vars (object and promise cannot import realm
// without a cycle), so in a process running more than one Realm
// concurrently the most-recently-constructed realm's wiring wins — an
// accepted limitation given spec.md §5's single engine/single realm
// execution model (see DESIGN.md).
func (r *Realm) wireHooks() {
	object.CallGetter = func(a *object.Arena, getter, receiver value.Value) (value.Value, bool, error) {
		fn, ok := a.Resolve(getter).(*Function)
		if !ok {
			return value.Undefined, true, nil
		}
		v, err := fn.Call(receiver, nil)
		return v, true, err
	}
	object.CallSetterFn = func(a *object.Arena, setter, receiver, v value.Value) error {
		fn, ok := a.Resolve(setter).(*Function)
		if !ok {
			return nil
		}
		_, err := fn.Call(receiver, []value.Value{v})
		return err
	}

	promise.CheckThenable = func(v value.Value, resolve, reject func(value.Value)) (bool, error) {
		if !v.IsObject() {
			return false, nil
		}
		then, ok, err := r.Arena.Resolve(v).TryGet(r.Arena, object.StringKey("then"), v)
		if err != nil {
			return false, err
		}
		if !ok || !then.IsObject() {
			return false, nil
		}
		thenFn, ok := r.Arena.Resolve(then).(*Function)
		if !ok {
			return false, nil
		}
		resolveFn := NewHostFunction(r, "", 1, false, func(_ *Realm, _ value.Value, args []value.Value) (value.Value, error) {
			resolve(arg(args, 0))
			return value.Undefined, nil
		})
		rejectFn := NewHostFunction(r, "", 1, false, func(_ *Realm, _ value.Value, args []value.Value) (value.Value, error) {
			reject(arg(args, 0))
			return value.Undefined, nil
		})
		_, callErr := thenFn.Call(v, []value.Value{
			value.Object(r.Arena.Alloc(resolveFn)),
			value.Object(r.Arena.Alloc(rejectFn)),
		})
		return true, callErr
	}
	promise.ErrorToValue = func(err error) value.Value {
		if je, ok := err.(*jserror.Error); ok {
			if je.HasPayload {
				return je.Payload
			}
			return r.NewError(je.Kind, je.Message)
		}
		return r.NewError(jserror.Internal, err.Error())
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

// NewError constructs a realm-bound Error object of the given kind
// (spec.md §7: "jserror.Error ... an optional realm-bound object.Ref to
// the constructed ECMAScript error object").
func (r *Realm) NewError(kind jserror.Kind, message string) value.Value {
	proto, ok := r.errorProtos[kind]
	if !ok {
		proto = r.ErrorProto
	}
	o := object.NewOrdinary(proto)
	_, _ = o.Define(nil, object.StringKey("message"), object.DataDescriptor(value.String(message), true, false, true))
	return value.Object(r.Arena.Alloc(o))
}

// Throw builds a jserror.Error carrying a realm-bound Error object as its
// Payload, the two-layer design spec.md §7/§9 describes: internal checks
// raise jserror values, and the realm attaches the actual script-visible
// object lazily only when one is needed (here, immediately, since the
// realm is always available to callers of Throw).
func (r *Realm) Throw(kind jserror.Kind, format string, args ...interface{}) error {
	e := jserror.New(kind, format, args...)
	return e.WithPayload(r.NewError(kind, e.Message))
}

// SetGlobal installs a plain data property on the global object (the
// `set_global` contract from spec.md §6).
func (r *Realm) SetGlobal(name string, v value.Value) error {
	_, err := r.Arena.Resolve(r.Global).Define(r.Arena, object.StringKey(name), object.DataDescriptor(v, true, false, true))
	return err
}

// SetGlobalFunction installs a host function under name on the global
// object (spec.md §6 `set_global_function`).
func (r *Realm) SetGlobalFunction(name string, handler HostHandler) error {
	fn := NewHostFunction(r, name, 0, false, handler)
	return r.SetGlobal(name, value.Object(r.Arena.Alloc(fn)))
}

// Call invokes a callable Value, resolving via the arena. It is a
// TypeError (not a Go error) if fnVal isn't actually callable.
func (r *Realm) Call(fnVal value.Value, this value.Value, args []value.Value) (value.Value, error) {
	if !fnVal.IsObject() {
		return value.Value{}, r.Throw(jserror.TypeError, "value is not callable")
	}
	fn, ok := r.Arena.Resolve(fnVal).(*Function)
	if !ok {
		return value.Value{}, r.Throw(jserror.TypeError, "value is not callable")
	}
	return fn.Call(this, args)
}

// Construct invokes `new fnVal(...args)`.
func (r *Realm) Construct(fnVal value.Value, args []value.Value) (value.Value, error) {
	if !fnVal.IsObject() {
		return value.Value{}, r.Throw(jserror.TypeError, "value is not a constructor")
	}
	fn, ok := r.Arena.Resolve(fnVal).(*Function)
	if !ok {
		return value.Value{}, r.Throw(jserror.TypeError, "value is not a constructor")
	}
	return fn.Construct(args)
}
