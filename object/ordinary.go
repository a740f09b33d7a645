package object

import (
	"sort"

	"github.com/go-ecma/engine/value"
)

// Ordinary is the plain-object implementation of Object (spec.md §3
// "OrdinaryObject" and §4.1). Arrays, typed arrays, Maps, etc. embed an
// Ordinary for their "extra properties" behaviour and override the
// indexed/length-specific paths.
type Ordinary struct {
	class string // e.g. "Object"; overridden by embedders via Class()

	props map[Key]Descriptor
	order []Key // insertion order, independent of the descriptor map

	proto       value.Value // KindObject or KindNull
	extensible  bool
	sealed      bool
	frozen      bool

	privates map[string]value.Value
	brands   map[string]struct{}
}

// NewOrdinary creates an empty, extensible ordinary object with the given
// prototype (value.Null for no prototype).
func NewOrdinary(proto value.Value) *Ordinary {
	return &Ordinary{
		class:      "Object",
		props:      map[Key]Descriptor{},
		proto:      proto,
		extensible: true,
	}
}

// SetClass overrides the Class() string embedders report (e.g. "Array").
func (o *Ordinary) SetClass(c string) { o.class = c }

func (o *Ordinary) Class() string { return o.class }

// TryGet implements spec.md §4.1 try_get: own descriptors first, then the
// prototype chain, with a cycle-detection set guarding against prototype
// loops and accessors invoked with receiver as `this`.
func (o *Ordinary) TryGet(a *Arena, key Key, receiver value.Value) (value.Value, bool, error) {
	return tryGetChain(a, Object(o), key, receiver, map[Object]bool{})
}

// tryGetChain is shared by every Object implementation's TryGet so the
// prototype-walk + cycle-guard logic lives in one place.
func tryGetChain(a *Arena, self Object, key Key, receiver value.Value, seen map[Object]bool) (value.Value, bool, error) {
	if seen[self] {
		return value.Undefined, false, nil
	}
	seen[self] = true

	if desc, ok := self.GetOwnDescriptor(key); ok {
		if desc.IsAccessorDescriptor() {
			if desc.Get.IsUndefined() {
				return value.Undefined, true, nil
			}
			return CallGetter(a, desc.Get, receiver)
		}
		return desc.Value, true, nil
	}

	proto := self.Prototype()
	if proto.IsNull() || proto.IsUndefined() {
		return value.Undefined, false, nil
	}
	protoObj := a.Resolve(proto)
	return tryGetChain(a, protoObj, key, receiver, seen)
}

// CallGetter and CallSetter are filled in by the realm package at
// start-up (they need to invoke callables, which would otherwise create
// an import cycle between object and realm). Until wired, getters/setters
// are treated as absent.
var (
	CallGetter = func(a *Arena, getter, receiver value.Value) (value.Value, bool, error) {
		return value.Undefined, true, nil
	}
	CallSetterFn = func(a *Arena, setter, receiver, v value.Value) error {
		return nil
	}
)

// Set implements spec.md §4.1 set.
func (o *Ordinary) Set(a *Arena, key Key, v value.Value, receiver value.Value) error {
	return setChain(a, Object(o), key, v, receiver, map[Object]bool{})
}

func setChain(a *Arena, self Object, key Key, v, receiver value.Value, seen map[Object]bool) error {
	if seen[self] {
		return nil
	}
	seen[self] = true

	if desc, ok := self.GetOwnDescriptor(key); ok {
		if desc.IsAccessorDescriptor() {
			if desc.Set.IsUndefined() {
				return nil // no setter: silently ignored (non-strict policy)
			}
			return CallSetterFn(a, desc.Set, receiver, v)
		}
		if !desc.Writable {
			return nil // non-strict: ignored
		}
		if self == a.Resolve(receiver) {
			// receiver is the object itself: update in place.
			_, err := self.Define(a, key, Descriptor{Value: v, HasValue: true})
			return err
		}
		// receiver differs from self: fall through to creating an own
		// property on receiver, per §9.1.9.2 OrdinarySetWithOwnDescriptor.
		return createOwnDataProperty(a, receiver, key, v)
	}

	proto := self.Prototype()
	if proto.IsNull() || proto.IsUndefined() {
		return createOwnDataProperty(a, receiver, key, v)
	}
	protoObj := a.Resolve(proto)
	return setChain(a, protoObj, key, v, receiver, seen)
}

func createOwnDataProperty(a *Arena, receiver value.Value, key Key, v value.Value) error {
	if !receiver.IsObject() {
		return nil
	}
	recvObj := a.Resolve(receiver)
	if !recvObj.IsExtensible() {
		return nil
	}
	_, err := recvObj.Define(a, key, DataDescriptor(v, true, true, true))
	return err
}

// Define implements spec.md §4.1 define (ECMA-262 §9.1.6.3).
func (o *Ordinary) Define(a *Arena, key Key, desc Descriptor) (bool, error) {
	current, had := o.props[key]
	merged, ok := validateAndApply(current, had, o.extensible, desc)
	if !ok {
		return false, nil
	}
	if !had {
		o.order = append(o.order, key)
	}
	o.props[key] = merged
	return true, nil
}

// GetOwnDescriptor returns the complete own descriptor for key (spec.md §8
// "Round-trip": every field is present).
func (o *Ordinary) GetOwnDescriptor(key Key) (Descriptor, bool) {
	d, ok := o.props[key]
	if !ok {
		return Descriptor{}, false
	}
	return d.complete(), true
}

// Delete implements spec.md §4.1 delete.
func (o *Ordinary) Delete(key Key) bool {
	d, ok := o.props[key]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// OwnKeys implements spec.md §4.1 own_keys / §7.3.23 (OrdinaryOwnPropertyKeys):
// integer-index keys ascending numerically, then string keys in insertion
// order, then symbol keys in insertion order.
func (o *Ordinary) OwnKeys() []Key {
	var indices []uint32
	var strs []Key
	var syms []Key
	for _, k := range o.order {
		if k.IsSymbol() {
			syms = append(syms, k)
			continue
		}
		if idx, ok := k.arrayIndex(); ok {
			indices = append(indices, idx)
			continue
		}
		strs = append(strs, k)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	out := make([]Key, 0, len(indices)+len(strs)+len(syms))
	for _, idx := range indices {
		out = append(out, StringKey(uitoa(idx)))
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
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

func (o *Ordinary) Prototype() value.Value { return o.proto }

// SetPrototype implements __proto__ reassignment (ECMA-262 §9.1.2
// OrdinarySetPrototypeOf): rejects cycles and is a no-op (returns false)
// on a non-extensible object trying to actually change the prototype.
func (o *Ordinary) SetPrototype(a *Arena, proto value.Value) bool {
	if value.SameValueZero(proto, o.proto) {
		return true
	}
	if !o.extensible {
		return false
	}
	if proto.IsObject() {
		seen := map[Object]bool{o: true}
		cur := proto
		for cur.IsObject() {
			obj := a.Resolve(cur)
			if seen[obj] {
				return false // cycle
			}
			seen[obj] = true
			cur = obj.Prototype()
		}
	}
	o.proto = proto
	return true
}

func (o *Ordinary) IsExtensible() bool { return o.extensible }

func (o *Ordinary) PreventExtensions() { o.extensible = false }

// Seal downgrades every own property to non-configurable (spec.md §4.1).
func (o *Ordinary) Seal() {
	o.extensible = false
	for k, d := range o.props {
		d.Configurable, d.HasConfigurable = false, true
		o.props[k] = d
	}
	o.sealed = true
}

// Freeze additionally downgrades data properties to non-writable.
func (o *Ordinary) Freeze() {
	o.extensible = false
	for k, d := range o.props {
		d.Configurable, d.HasConfigurable = false, true
		if d.IsDataDescriptor() {
			d.Writable, d.HasWritable = false, true
		}
		o.props[k] = d
	}
	o.sealed = true
	o.frozen = true
}

// IsSealed/IsFrozen are idempotence-friendly: Object.freeze(Object.freeze(o))
// observes the same already-frozen state (spec.md §8 "Idempotence").
func (o *Ordinary) IsSealed() bool {
	if o.extensible {
		return false
	}
	for _, d := range o.props {
		if d.Configurable {
			return false
		}
	}
	return true
}

func (o *Ordinary) IsFrozen() bool {
	if !o.IsSealed() {
		return false
	}
	for _, d := range o.props {
		if d.IsDataDescriptor() && d.Writable {
			return false
		}
	}
	return true
}

// --- Private fields & brands (spec.md §4.1 "Private names") ---

// GetPrivate reads a private field, bypassing the descriptor map and all
// enumeration entirely.
func (o *Ordinary) GetPrivate(name string) (value.Value, bool) {
	v, ok := o.privates[name]
	return v, ok
}

// SetPrivate installs or updates a private field slot.
func (o *Ordinary) SetPrivate(name string, v value.Value) {
	if o.privates == nil {
		o.privates = map[string]value.Value{}
	}
	o.privates[name] = v
}

// AddBrand marks o as having been constructed by the class owning token.
func (o *Ordinary) AddBrand(token string) {
	if o.brands == nil {
		o.brands = map[string]struct{}{}
	}
	o.brands[token] = struct{}{}
}

// HasBrand implements the `#x in obj` brand-check form.
func (o *Ordinary) HasBrand(token string) bool {
	_, ok := o.brands[token]
	return ok
}
