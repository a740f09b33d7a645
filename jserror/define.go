package jserror

import (
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// DefinePropertyOrThrow is the throwing language-level counterpart to
// object.Object.Define's boolean API (spec.md §4.1 "Failure semantics":
// "the throwing callers ... convert that to a TypeError signal"), used by
// host functions implementing Object.defineProperty.
func DefinePropertyOrThrow(a *object.Arena, obj value.Value, key object.Key, desc object.Descriptor) error {
	if !obj.IsObject() {
		return New(TypeError, "Object.defineProperty called on non-object")
	}
	ok, err := a.Resolve(obj).Define(a, key, desc)
	if err != nil {
		return err
	}
	if !ok {
		name := key.String()
		if key.IsSymbol() {
			name = key.Symbol().String()
		}
		return New(TypeError, "Cannot redefine property: %s", name)
	}
	return nil
}
