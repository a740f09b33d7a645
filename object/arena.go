package object

import "github.com/go-ecma/engine/value"

// Object is the capability set every object-like entity implements
// (spec.md §3 "Object-like"): property-get/set/define/delete, own-keys,
// prototype, extensibility and seal/freeze. Dispatch over the different
// concrete kinds (ordinary object, array, typed array, ...) is a type
// switch/interface call, not a Go-level interface-chain hierarchy — the
// "tagged variant" translation called out in spec.md §9.
type Object interface {
	// Class is the internal [[Class]]-like discriminator used for
	// Object.prototype.toString and exotic-object dispatch.
	Class() string

	TryGet(a *Arena, key Key, receiver value.Value) (value.Value, bool, error)
	Set(a *Arena, key Key, v value.Value, receiver value.Value) error
	Define(a *Arena, key Key, desc Descriptor) (bool, error)
	GetOwnDescriptor(key Key) (Descriptor, bool)
	Delete(key Key) bool
	OwnKeys() []Key

	Prototype() value.Value
	SetPrototype(a *Arena, proto value.Value) bool

	IsExtensible() bool
	PreventExtensions()
	Seal()
	Freeze()
	IsSealed() bool
	IsFrozen() bool
}

// Arena is the per-realm object table: Values of KindObject carry a Ref
// that is only meaningful relative to the Arena that minted it (spec.md
// §9 "arena + index handles").
type Arena struct {
	objects []Object // index 0 is reserved/unused so the zero Ref is invalid
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{objects: make([]Object, 1, 64)}
}

// Alloc registers obj and returns its handle.
func (a *Arena) Alloc(obj Object) value.Ref {
	a.objects = append(a.objects, obj)
	return value.NewRef(uint32(len(a.objects) - 1))
}

// Get resolves a handle back to its Object. It panics on an invalid
// handle, mirroring the teacher's convention of panicking on internal
// invariant violations (never on ECMAScript-observable conditions).
func (a *Arena) Get(r value.Ref) Object {
	id := r.ID()
	if id == 0 || int(id) >= len(a.objects) {
		panic("object: dangling or invalid Ref")
	}
	return a.objects[id]
}

// Resolve is a convenience for pulling the Object out of a Value known to
// be KindObject.
func (a *Arena) Resolve(v value.Value) Object {
	return a.Get(v.AsRef())
}
