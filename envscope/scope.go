// Package envscope implements spec.md §4.8's lexical environment chain:
// parent-linked scopes, let/const/var/param bindings with a temporal-dead-zone
// marker, and (in arguments.go) the non-strict mapped arguments object.
package envscope

import (
	"github.com/mstoykov/atlas"

	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/value"
)

// Kind distinguishes the mutability/TDZ rules a binding follows.
type Kind uint8

const (
	KindVar Kind = iota
	KindLet
	KindConst
	KindParam
)

// binding is a single slot's mutable state. The name -> slot-index mapping
// lives in the scope's atlas.Node (see Scope.names); the slots themselves
// are a plain mutable slice, since let/const/var mutability and TDZ are a
// per-engine concern atlas's structure sharing doesn't need to know about
// (SPEC_FULL.md §4.12).
type binding struct {
	kind        Kind
	initialized bool
	value       value.Value
}

// Scope is one lexical frame. Declare extends names via AddLink, which —
// because atlas.Node is a persistent/immutable linked structure — lets a
// closure capture a *Scope at one point in its declaration sequence
// without that capture observing bindings the frame declares afterward
// through a *different* outstanding reference... in practice here Scope
// always holds the latest names node for itself, but the persistent
// structure is what makes forking a scope snapshot (a nested block scope
// built from a partially-populated outer one) cheap, which is the payoff
// grounded on the teacher's k6 tag-set usage (metrics/tags_test.go).
type Scope struct {
	parent *Scope
	names  atlas.Node
	slots  []binding
}

// NewScope creates a scope chained to parent (nil for the global/root
// scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: atlas.New()}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare reserves a new binding in this frame and returns its slot index.
// initialized=false models a let/const binding before its declaration has
// executed (TDZ); var/param bindings are always declared initialized
// (with an undefined/argument value).
func (s *Scope) Declare(name string, kind Kind, initialized bool, v value.Value) int {
	idx := len(s.slots)
	s.slots = append(s.slots, binding{kind: kind, initialized: initialized, value: v})
	s.names = s.names.AddLink(name, idx)
	return idx
}

// lookup walks outward from s, returning the owning scope and slot index.
func (s *Scope) lookup(name string) (*Scope, int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.names.Get(name); ok {
			return cur, v.(int), true
		}
	}
	return nil, 0, false
}

// Has reports whether name resolves anywhere in the chain.
func (s *Scope) Has(name string) bool {
	_, _, ok := s.lookup(name)
	return ok
}

// Get resolves name's current value, per spec.md §4.8 / §9: TDZ access to
// an uninitialized let/const binding is a ReferenceError, and an unresolved
// name is a ReferenceError ("not defined").
func (s *Scope) Get(name string) (value.Value, error) {
	owner, idx, ok := s.lookup(name)
	if !ok {
		return value.Undefined, jserror.New(jserror.ReferenceError, "%s is not defined", name)
	}
	b := owner.slots[idx]
	if !b.initialized {
		return value.Undefined, jserror.New(jserror.ReferenceError, "Cannot access %q before initialization", name)
	}
	return b.value, nil
}

// Assign walks outward to the binding's owner and writes through it
// (spec.md §4.8: "Assign(symbol,value) walks outward to the binding's
// owner"). Assigning to a const after initialization, or to an
// uninitialized (TDZ) binding, is a TypeError/ReferenceError respectively;
// assigning to an unresolved name is a ReferenceError.
func (s *Scope) Assign(name string, v value.Value) error {
	owner, idx, ok := s.lookup(name)
	if !ok {
		return jserror.New(jserror.ReferenceError, "%s is not defined", name)
	}
	b := &owner.slots[idx]
	if !b.initialized {
		return jserror.New(jserror.ReferenceError, "Cannot access %q before initialization", name)
	}
	if b.kind == KindConst {
		return jserror.New(jserror.TypeError, "Assignment to constant variable %q", name)
	}
	b.value = v
	return nil
}

// InitializeBinding completes a let/const/param declaration's TDZ, setting
// its value and marking it initialized. Re-initializing an already
// initialized let/const (e.g. a duplicate `let` in the same frame reaching
// its declaration twice, which the parser should already reject) is left
// as the caller's responsibility — InitializeBinding itself is idempotent
// at the storage level.
func (s *Scope) InitializeBinding(idx int, v value.Value) {
	s.slots[idx].initialized = true
	s.slots[idx].value = v
}

// SlotValue reads a binding directly by frame-local slot index, bypassing
// name lookup — used by MappedArguments to alias a parameter's storage.
func (s *Scope) SlotValue(idx int) value.Value { return s.slots[idx].value }

// SetSlotValue writes a binding directly by frame-local slot index.
func (s *Scope) SetSlotValue(idx int, v value.Value) { s.slots[idx].value = v }
