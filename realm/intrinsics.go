package realm

import (
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// installMethod defines a non-enumerable, writable, configurable method
// on obj — the attribute triple ECMA-262 gives built-in prototype methods.
func installMethod(r *Realm, obj object.Object, name string, length int, handler HostHandler) {
	fn := NewHostFunction(r, name, length, false, handler).DisallowConstruct("")
	_, _ = obj.Define(r.Arena, object.StringKey(name), object.DataDescriptor(value.Object(r.Arena.Alloc(fn)), true, false, true))
}

func (r *Realm) asFunction(v value.Value) (*Function, error) {
	if v.IsObject() {
		if fn, ok := r.Arena.Resolve(v).(*Function); ok {
			return fn, nil
		}
	}
	return nil, r.Throw(jserror.TypeError, "value is not a function")
}

// toArgsList reads an array-like's "length" and indices [0, length) — the
// argument-spreading rule Function.prototype.apply needs (spec.md §4.9).
func (r *Realm) toArgsList(v value.Value) ([]value.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, r.Throw(jserror.TypeError, "CreateListFromArrayLike called on non-object")
	}
	obj := r.Arena.Resolve(v)
	lenVal, ok, err := obj.TryGet(r.Arena, object.StringKey("length"), v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	n := int(lenVal.AsNumber())
	if n < 0 {
		n = 0
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		ev, _, err := obj.TryGet(r.Arena, object.StringKey(uitoa(uint32(i))), v)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func uitoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// installFunctionProto wires call/apply/bind onto Function.prototype
// (spec.md §4.9: "automatic call/apply/bind adapters").
func (r *Realm) installFunctionProto() {
	protoObj := r.Arena.Resolve(r.FunctionProto)

	installMethod(r, protoObj, "call", 1, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		fn, err := r.asFunction(this)
		if err != nil {
			return value.Value{}, err
		}
		return fn.Call(arg(args, 0), restArgs(args, 1))
	})
	installMethod(r, protoObj, "apply", 2, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		fn, err := r.asFunction(this)
		if err != nil {
			return value.Value{}, err
		}
		spread, err := r.toArgsList(arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
		return fn.Call(arg(args, 0), spread)
	})
	installMethod(r, protoObj, "bind", 1, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		fn, err := r.asFunction(this)
		if err != nil {
			return value.Value{}, err
		}
		bound := fn.Bind(arg(args, 0), restArgs(args, 1))
		return value.Object(r.Arena.Alloc(bound)), nil
	})
}

func restArgs(args []value.Value, from int) []value.Value {
	if from >= len(args) {
		return nil
	}
	return append([]value.Value(nil), args[from:]...)
}

// installObjectStatics installs the subset of Object's static surface
// that exercises the property-descriptor protocol directly (spec.md §4.1):
// defineProperty, getOwnPropertyDescriptor, freeze/seal/preventExtensions
// and their is* queries, keys, and create.
func (r *Realm) installObjectStatics() {
	ctor := NewHostFunction(r, "Object", 1, true, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			return v, nil
		}
		return value.Object(r.Arena.Alloc(object.NewOrdinary(r.ObjectProto))), nil
	})
	ctorObj := ctor.Ordinary

	installMethod(r, ctorObj, "defineProperty", 3, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return value.Value{}, r.Throw(jserror.TypeError, "Object.defineProperty called on non-object")
		}
		key, err := r.toKey(arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
		desc, err := r.toDescriptor(arg(args, 2))
		if err != nil {
			return value.Value{}, err
		}
		if err := jserror.DefinePropertyOrThrow(r.Arena, target, key, desc); err != nil {
			return value.Value{}, err
		}
		return target, nil
	})

	installMethod(r, ctorObj, "getOwnPropertyDescriptor", 2, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return value.Undefined, nil
		}
		key, err := r.toKey(arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
		desc, ok := r.Arena.Resolve(target).GetOwnDescriptor(key)
		if !ok {
			return value.Undefined, nil
		}
		return r.fromDescriptor(desc), nil
	})

	installMethod(r, ctorObj, "keys", 1, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return value.Value{}, r.Throw(jserror.TypeError, "Object.keys called on non-object")
		}
		obj := r.Arena.Resolve(target)
		arr := object.NewOrdinary(r.ArrayProto)
		arr.SetClass("Array")
		i := 0
		for _, k := range obj.OwnKeys() {
			if k.IsSymbol() {
				continue
			}
			desc, ok := obj.GetOwnDescriptor(k)
			if !ok || !desc.Enumerable {
				continue
			}
			_, _ = arr.Define(r.Arena, object.StringKey(uitoa(uint32(i))), object.DataDescriptor(k.ToValue(), true, true, true))
			i++
		}
		_, _ = arr.Define(r.Arena, object.StringKey("length"), object.DataDescriptor(value.Number(float64(i)), true, false, false))
		return value.Object(r.Arena.Alloc(arr)), nil
	})

	installMethod(r, ctorObj, "create", 2, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
		proto := arg(args, 0)
		if !proto.IsObject() && !proto.IsNull() {
			return value.Value{}, r.Throw(jserror.TypeError, "Object prototype may only be an Object or null")
		}
		return value.Object(r.Arena.Alloc(object.NewOrdinary(proto))), nil
	})

	for _, spec := range []struct {
		name string
		f    func(object.Object)
	}{
		{"freeze", object.Object.Freeze},
		{"seal", object.Object.Seal},
		{"preventExtensions", object.Object.PreventExtensions},
	} {
		spec := spec
		installMethod(r, ctorObj, spec.name, 1, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
			target := arg(args, 0)
			if target.IsObject() {
				spec.f(r.Arena.Resolve(target))
			}
			return target, nil
		})
	}
	for _, spec := range []struct {
		name string
		f    func(object.Object) bool
	}{
		{"isFrozen", object.Object.IsFrozen},
		{"isSealed", object.Object.IsSealed},
		{"isExtensible", object.Object.IsExtensible},
	} {
		spec := spec
		installMethod(r, ctorObj, spec.name, 1, func(r *Realm, _ value.Value, args []value.Value) (value.Value, error) {
			target := arg(args, 0)
			if !target.IsObject() {
				return value.Bool(spec.name == "isFrozen" || spec.name == "isSealed"), nil
			}
			return value.Bool(spec.f(r.Arena.Resolve(target))), nil
		})
	}

	_ = r.SetGlobal("Object", value.Object(r.Arena.Alloc(ctor)))
}

func (r *Realm) toKey(v value.Value) (object.Key, error) {
	if v.IsSymbol() {
		return object.SymbolKey(v.AsSymbol()), nil
	}
	return object.StringKey(v.AsString()), nil
}

// toDescriptor reads a plain property-descriptor object into
// object.Descriptor, only setting the "Has*" bits for properties actually
// present on desc (ECMA-262 §6.2.6.5 ToPropertyDescriptor).
func (r *Realm) toDescriptor(v value.Value) (object.Descriptor, error) {
	if !v.IsObject() {
		return object.Descriptor{}, r.Throw(jserror.TypeError, "property descriptor must be an object")
	}
	obj := r.Arena.Resolve(v)
	var d object.Descriptor
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("value"), v); err != nil {
		return d, err
	} else if ok {
		d.Value, d.HasValue = val, true
	}
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("writable"), v); err != nil {
		return d, err
	} else if ok {
		d.Writable, d.HasWritable = val.ToBoolean(), true
	}
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("get"), v); err != nil {
		return d, err
	} else if ok {
		d.Get, d.HasGet = val, true
	}
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("set"), v); err != nil {
		return d, err
	} else if ok {
		d.Set, d.HasSet = val, true
	}
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("enumerable"), v); err != nil {
		return d, err
	} else if ok {
		d.Enumerable, d.HasEnumerable = val.ToBoolean(), true
	}
	if val, ok, err := obj.TryGet(r.Arena, object.StringKey("configurable"), v); err != nil {
		return d, err
	} else if ok {
		d.Configurable, d.HasConfigurable = val.ToBoolean(), true
	}
	return d, nil
}

// fromDescriptor is getOwnPropertyDescriptor's complete() round-trip
// (spec.md §8 "Round-trip") rendered as a plain script object.
func (r *Realm) fromDescriptor(d object.Descriptor) value.Value {
	o := object.NewOrdinary(r.ObjectProto)
	set := func(name string, v value.Value) {
		_, _ = o.Define(r.Arena, object.StringKey(name), object.DataDescriptor(v, true, true, true))
	}
	if d.IsAccessorDescriptor() {
		set("get", d.Get)
		set("set", d.Set)
	} else {
		set("value", d.Value)
		set("writable", value.Bool(d.Writable))
	}
	set("enumerable", value.Bool(d.Enumerable))
	set("configurable", value.Bool(d.Configurable))
	return value.Object(r.Arena.Alloc(o))
}

// installErrorConstructors installs Error and the four derived kinds as
// realm globals (spec.md §7's taxonomy, now script-constructible).
func (r *Realm) installErrorConstructors() {
	install := func(name string, kind jserror.Kind) {
		ctor := NewHostFunction(r, name, 1, true, func(r *Realm, this value.Value, args []value.Value) (value.Value, error) {
			msg := ""
			if m := arg(args, 0); !m.IsUndefined() {
				msg = m.AsString()
			}
			return r.NewError(kind, msg), nil
		})
		proto := r.errorProtos[kind]
		_, _ = ctor.Ordinary.Define(nil, fnPrototypeKey, object.DataDescriptor(proto, false, false, false))
		_ = r.SetGlobal(name, value.Object(r.Arena.Alloc(ctor)))
	}
	install("Error", jserror.Internal)
	install("TypeError", jserror.TypeError)
	install("RangeError", jserror.RangeError)
	install("ReferenceError", jserror.ReferenceError)
	install("SyntaxError", jserror.SyntaxError)
}
