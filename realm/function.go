package realm

import (
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// HostHandler is the host-function call signature from spec.md §4.9 and
// §6: `(this, args) → value`, allowed to return a *jserror.Error carrying
// an arbitrary thrown payload. r gives the handler access to realm state
// (intrinsics, the arena, NewError) without a global.
type HostHandler func(r *Realm, this value.Value, args []value.Value) (value.Value, error)

// Function is the callable exotic object behind every host and bound
// function value (spec.md §4.9): a handler, constructor flags, and a
// realm back-reference used to resolve Function.prototype and the right
// prototype chain for `new F()` when F.prototype is absent.
type Function struct {
	*object.Ordinary

	realm   *Realm
	name    string
	length  int
	handler HostHandler

	isConstructor     bool
	disallowConstruct bool
	disallowMessage   string

	// Set only for a function produced by Bind; Call prefixes boundArgs
	// and fixes `this` to boundThis before invoking boundTarget.
	boundTarget *Function
	boundThis   value.Value
	boundArgs   []value.Value
}

var (
	fnNameKey     = object.StringKey("name")
	fnLengthKey   = object.StringKey("length")
	fnPrototypeKey = object.StringKey("prototype")
)

// newFunction builds the Ordinary shell shared by NewHostFunction and Bind:
// "name" and "length" are non-writable, non-enumerable, configurable own
// data properties, the same attribute triple ECMA-262 gives built-in
// function exotic objects.
func newFunction(proto value.Value, name string, length int) *object.Ordinary {
	o := object.NewOrdinary(proto)
	o.SetClass("Function")
	_, _ = o.Define(nil, fnNameKey, object.DataDescriptor(value.String(name), false, false, true))
	_, _ = o.Define(nil, fnLengthKey, object.DataDescriptor(value.Number(float64(length)), false, false, true))
	return o
}

// NewHostFunction builds a host function value bound to r. When
// isConstructor is true, `new` against it is allowed (the caller is
// responsible for handler doing something useful with that — spec.md
// §4.9 doesn't require a handler to special-case being called via new;
// typical constructors branch on an `IsNewTarget`-style convention the
// caller establishes by argument or closure).
func NewHostFunction(r *Realm, name string, length int, isConstructor bool, handler HostHandler) *Function {
	fn := &Function{
		realm:         r,
		name:          name,
		length:        length,
		handler:       handler,
		isConstructor: isConstructor,
	}
	fn.Ordinary = newFunction(r.FunctionProto, name, length)
	return fn
}

// DisallowConstruct marks fn as throwing TypeError (with msg, or a default
// message when msg is empty) on `new`, per spec.md §4.9's "DisallowConstruct
// flag with an optional error message" — used for built-in methods that
// exist as callable values but were never meant to be constructors (e.g.
// Function.prototype.call itself).
func (fn *Function) DisallowConstruct(msg string) *Function {
	fn.disallowConstruct = true
	fn.disallowMessage = msg
	return fn
}

func (fn *Function) Class() string { return "Function" }

// Name is the function's `.name` (spec.md §4.9's realm back-reference
// also resolves identity for error messages).
func (fn *Function) Name() string { return fn.name }

// Call invokes fn with this/args, resolving the bound-function chain
// first (spec.md §4.9: "bind produces a new host function that prefixes
// stored arguments and fixes this").
func (fn *Function) Call(this value.Value, args []value.Value) (value.Value, error) {
	if fn.boundTarget != nil {
		combined := make([]value.Value, 0, len(fn.boundArgs)+len(args))
		combined = append(combined, fn.boundArgs...)
		combined = append(combined, args...)
		return fn.boundTarget.Call(fn.boundThis, combined)
	}
	return fn.handler(fn.realm, this, args)
}

// Construct implements `new fn(...args)` (ECMA-262 §10.2.2-ish, boiled
// down to spec.md §4.9's requirements): a bound function constructs
// through its target; otherwise fn must be constructible, and the new
// object's prototype comes from fn's own "prototype" property when
// present, falling back to realm.ObjectProto (the "new F() produces
// objects with the right prototype chain when F.prototype is absent"
// case spec.md §4.9 calls out explicitly).
func (fn *Function) Construct(args []value.Value) (value.Value, error) {
	if fn.boundTarget != nil {
		return fn.boundTarget.Construct(append(append([]value.Value(nil), fn.boundArgs...), args...))
	}
	if !fn.isConstructor || fn.disallowConstruct {
		msg := fn.disallowMessage
		if msg == "" {
			msg = fn.name + " is not a constructor"
		}
		return value.Value{}, jserror.New(jserror.TypeError, "%s", msg)
	}

	proto := fn.realm.ObjectProto
	if p, ok, err := fn.Ordinary.TryGet(fn.realm.Arena, fnPrototypeKey, value.Null); err == nil && ok && p.IsObject() {
		proto = p
	}
	inst := object.NewOrdinary(proto)
	instRef := fn.realm.Arena.Alloc(inst)
	instVal := value.Object(instRef)

	result, err := fn.handler(fn.realm, instVal, args)
	if err != nil {
		return value.Value{}, err
	}
	if result.IsObject() {
		return result, nil // handler returned its own object (spec.md: constructors may override `this`)
	}
	return instVal, nil
}

// Bind implements Function.prototype.bind (spec.md §4.9).
func (fn *Function) Bind(boundThis value.Value, boundArgs []value.Value) *Function {
	name := "bound " + fn.name
	length := fn.length - len(boundArgs)
	if length < 0 {
		length = 0
	}
	bound := &Function{
		realm:         fn.realm,
		name:          name,
		length:        length,
		isConstructor: fn.isConstructor,
		boundTarget:   fn,
		boundThis:     boundThis,
		boundArgs:     append([]value.Value(nil), boundArgs...),
	}
	bound.Ordinary = newFunction(fn.realm.FunctionProto, name, length)
	return bound
}
