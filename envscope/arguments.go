package envscope

import (
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// MappedArguments is the non-strict `arguments` exotic object (spec.md
// §4.8): indices below the mapped count alias the corresponding parameter
// binding's storage directly, so `arguments[i] = v` writes the parameter
// and assigning the parameter is visible through `arguments[i]` — both are
// simply reads/writes of the same Scope slot, with no observer plumbing
// needed. Reconfiguring index i via Define into an accessor or
// non-writable property "unmaps" it: from then on it behaves as an
// ordinary own property, decoupled from the parameter.
type MappedArguments struct {
	*object.Ordinary
	scope  *Scope
	slots  []int // scope slot index per mapped parameter position; -1 once unmapped
	length int   // arguments.length (may exceed len(slots) for extra args)
}

var (
	argLengthKey = object.StringKey("length")
	argCalleeKey = object.StringKey("callee")
)

// NewMappedArguments builds the arguments object for a non-strict call.
// scope is the callee's parameter scope; paramSlots holds that scope's
// slot index for each declared parameter (positional); extra holds
// arguments beyond the declared parameter count, which are plain own
// values with no live mapping.
func NewMappedArguments(proto value.Value, scope *Scope, paramSlots []int, extra []value.Value) *MappedArguments {
	ma := &MappedArguments{
		Ordinary: object.NewOrdinary(proto),
		scope:    scope,
		slots:    append([]int(nil), paramSlots...),
		length:   len(paramSlots) + len(extra),
	}
	ma.Ordinary.SetClass("Arguments")
	for i, v := range extra {
		idx := len(paramSlots) + i
		_, _ = ma.Ordinary.Define(nil, object.StringKey(itoa(idx)), object.DataDescriptor(v, true, true, true))
	}
	return ma
}

// PoisonCallee installs a non-strict-incompatible `callee` accessor that
// always throws when invoked, for a strict-mode-like caller that still
// wants `arguments` without exposing the calling function (spec.md §4.8:
// "A strict-mode callee's arguments.callee is a poisoned accessor that
// throws TypeError"). getter/setter are host-function values supplied by
// the realm, since envscope has no callable-function type of its own.
func (ma *MappedArguments) PoisonCallee(getter, setter value.Value) {
	_, _ = ma.Ordinary.Define(nil, argCalleeKey, object.Descriptor{
		HasGet: true, Get: getter,
		HasSet: true, Set: setter,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
}

func (ma *MappedArguments) indexSlot(key object.Key) (int, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	idx, ok := arrayIndexOf(key.String())
	if !ok || int(idx) >= len(ma.slots) || ma.slots[idx] < 0 {
		return 0, false
	}
	return int(idx), true
}

// TryGet overrides Ordinary.TryGet: a still-mapped index reads live
// through the parameter scope.
func (ma *MappedArguments) TryGet(a *object.Arena, key object.Key, receiver value.Value) (value.Value, bool, error) {
	if key == argLengthKey {
		return value.Number(float64(ma.length)), true, nil
	}
	if i, ok := ma.indexSlot(key); ok {
		return ma.scope.SlotValue(ma.slots[i]), true, nil
	}
	return ma.Ordinary.TryGet(a, key, receiver)
}

// Set overrides Ordinary.Set: writing a still-mapped index writes through
// to the parameter binding.
func (ma *MappedArguments) Set(a *object.Arena, key object.Key, v value.Value, receiver value.Value) error {
	if i, ok := ma.indexSlot(key); ok {
		ma.scope.SetSlotValue(ma.slots[i], v)
		return nil
	}
	return ma.Ordinary.Set(a, key, v, receiver)
}

// Define overrides Ordinary.Define: redefining a mapped index as an
// accessor or non-writable unmaps it first, snapshotting the current live
// value into the ordinary property storage before the redefinition takes
// effect (spec.md §4.8).
func (ma *MappedArguments) Define(a *object.Arena, key object.Key, desc object.Descriptor) (bool, error) {
	if i, ok := ma.indexSlot(key); ok {
		unmaps := desc.IsAccessorDescriptor() || (desc.HasWritable && !desc.Writable)
		if unmaps {
			current := ma.scope.SlotValue(ma.slots[i])
			ma.slots[i] = -1
			// Materialize the live value as a fresh, fully-configurable
			// own property first, then apply the actual requested
			// descriptor against that baseline so its attributes (not
			// just its value) take effect.
			if _, err := ma.Ordinary.Define(a, key, object.DataDescriptor(current, true, true, true)); err != nil {
				return false, err
			}
			return ma.Ordinary.Define(a, key, desc)
		}
		if desc.HasValue {
			ma.scope.SetSlotValue(ma.slots[i], desc.Value)
		}
		return true, nil
	}
	return ma.Ordinary.Define(a, key, desc)
}

// GetOwnDescriptor overrides Ordinary.GetOwnDescriptor for mapped indices.
func (ma *MappedArguments) GetOwnDescriptor(key object.Key) (object.Descriptor, bool) {
	if i, ok := ma.indexSlot(key); ok {
		return object.DataDescriptor(ma.scope.SlotValue(ma.slots[i]), true, true, true), true
	}
	return ma.Ordinary.GetOwnDescriptor(key)
}

// Delete overrides Ordinary.Delete: deleting a mapped index unmaps it (the
// property disappears entirely, matching ordinary array-like delete).
func (ma *MappedArguments) Delete(key object.Key) bool {
	if i, ok := ma.indexSlot(key); ok {
		ma.slots[i] = -1
		return true
	}
	return ma.Ordinary.Delete(key)
}

// arrayIndexOf parses s as a canonical array index (spec.md §4.2), the
// same rule arraylib.indexOf applies — duplicated here rather than
// exported across packages since it's a single unexported helper, not a
// shared abstraction.
func arrayIndexOf(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
