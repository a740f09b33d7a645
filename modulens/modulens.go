// Package modulens implements spec.md §4.8's module namespace object: an
// immutable exotic object exposing a module's live export bindings.
package modulens

import (
	"sort"

	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// BindingLookup resolves an export's live current value. The second
// return is false for an uninitialized (TDZ) binding — the situation
// spec.md §4.8 describes as the lookup result "equalling the uninitialized
// marker" — modeled here as an explicit ok-bool rather than a sentinel
// value, since that is the idiomatic Go shape for the same information.
// (envscope.Scope.Get, by contrast, reports a TDZ binding as a
// ReferenceError rather than an ok-bool.)
type BindingLookup func(name string) (value.Value, bool)

// Namespace is the module namespace exotic object: `set`, `delete`, and
// `setPrototypeOf` to any value other than the current prototype all fail;
// `get` dispatches through lookup and turns an uninitialized binding into
// a ReferenceError; `defineProperty` only succeeds when the request is
// idempotent with the export's current binding.
type Namespace struct {
	*object.Ordinary
	exports []string // sorted, per spec.md §3 "ModuleNamespace ... immutable sorted list of export names"
	lookup  BindingLookup
}

// New builds a module namespace object. exports need not be pre-sorted.
func New(proto value.Value, exports []string, lookup BindingLookup) *Namespace {
	sorted := append([]string(nil), exports...)
	sort.Strings(sorted)

	ns := &Namespace{Ordinary: object.NewOrdinary(proto), exports: sorted, lookup: lookup}
	ns.Ordinary.SetClass("Module")
	ns.Ordinary.PreventExtensions()
	return ns
}

func (ns *Namespace) isExport(name string) bool {
	i := sort.SearchStrings(ns.exports, name)
	return i < len(ns.exports) && ns.exports[i] == name
}

// TryGet dispatches exported names through lookup; an uninitialized
// binding is a ReferenceError, an unresolved non-export name falls back to
// whatever the (non-extensible) Ordinary storage holds (normally nothing).
func (ns *Namespace) TryGet(a *object.Arena, key object.Key, receiver value.Value) (value.Value, bool, error) {
	if !key.IsSymbol() && ns.isExport(key.String()) {
		v, ok := ns.lookup(key.String())
		if !ok {
			return value.Undefined, false, jserror.New(jserror.ReferenceError,
				"Cannot access %q before initialization", key.String())
		}
		return v, true, nil
	}
	return ns.Ordinary.TryGet(a, key, receiver)
}

// Set always fails: module namespace exports are immutable from script.
func (ns *Namespace) Set(a *object.Arena, key object.Key, v value.Value, receiver value.Value) error {
	return nil
}

// Delete fails (reports not-deleted, per the boolean delete API) for every
// export name; a key that is not an export reports true.
func (ns *Namespace) Delete(key object.Key) bool {
	return !ns.isExport(key.String())
}

// Define succeeds only when the request is idempotent with the export's
// current binding: a data descriptor matching its present value,
// non-writable, enumerable, non-configurable.
func (ns *Namespace) Define(a *object.Arena, key object.Key, desc object.Descriptor) (bool, error) {
	if key.IsSymbol() || !ns.isExport(key.String()) {
		return false, nil
	}
	if desc.IsAccessorDescriptor() {
		return false, nil
	}
	if desc.HasWritable && desc.Writable {
		return false, nil
	}
	if desc.HasEnumerable && !desc.Enumerable {
		return false, nil
	}
	if desc.HasConfigurable && desc.Configurable {
		return false, nil
	}
	if desc.HasValue {
		current, ok := ns.lookup(key.String())
		if !ok || !value.StrictEquals(current, desc.Value) {
			return false, nil
		}
	}
	return true, nil
}

// GetOwnDescriptor reports the synthetic data-descriptor view of an export
// (non-writable, enumerable, non-configurable), or falls through to the
// Ordinary storage.
func (ns *Namespace) GetOwnDescriptor(key object.Key) (object.Descriptor, bool) {
	if !key.IsSymbol() && ns.isExport(key.String()) {
		v, ok := ns.lookup(key.String())
		if !ok {
			return object.Descriptor{}, false
		}
		return object.DataDescriptor(v, false, true, false), true
	}
	return ns.Ordinary.GetOwnDescriptor(key)
}

// OwnKeys returns the sorted export names, per spec.md §3.
func (ns *Namespace) OwnKeys() []object.Key {
	keys := make([]object.Key, 0, len(ns.exports))
	for _, name := range ns.exports {
		keys = append(keys, object.StringKey(name))
	}
	return keys
}

// SetPrototype rejects any target other than the current prototype value,
// per spec.md §4.8 ("setPrototypeOf(non-null) all throw" at the language
// layer, modeled here as the boolean exotic-object API returning false for
// any change, idempotent for a no-op set to the existing value).
func (ns *Namespace) SetPrototype(a *object.Arena, newProto value.Value) bool {
	return value.StrictEquals(newProto, ns.Prototype())
}

// IsExtensible is always false; PreventExtensions is a no-op (already
// applied at construction).
func (ns *Namespace) IsExtensible() bool  { return false }
func (ns *Namespace) PreventExtensions()  {}
func (ns *Namespace) Seal()               {}
func (ns *Namespace) Freeze()             {}
func (ns *Namespace) IsSealed() bool      { return true }
func (ns *Namespace) IsFrozen() bool      { return true }
