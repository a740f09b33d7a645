package collections

import (
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/value"
)

// Go (at the module's go 1.22 floor) has no public ephemeron/weak-map
// primitive, so WeakSet/WeakMap follow the fallback spec.md §9 calls out
// explicitly and expose an explicit Prune. Nothing in this module calls
// Prune: entries stay until a caller invokes it with a reachability
// oracle.

func requireObjectKey(v value.Value) error {
	if !v.IsObject() {
		return jserror.New(jserror.TypeError, "Invalid value used in weak set/map (only objects are valid keys)")
	}
	return nil
}

// WeakSet holds object-only members, subject to Prune.
type WeakSet struct {
	members map[value.Ref]struct{}
}

// NewWeakSet creates an empty WeakSet.
func NewWeakSet() *WeakSet { return &WeakSet{members: map[value.Ref]struct{}{}} }

// Add inserts an object member; non-objects are a TypeError (spec.md §4.4).
func (s *WeakSet) Add(v value.Value) error {
	if err := requireObjectKey(v); err != nil {
		return err
	}
	s.members[v.AsRef()] = struct{}{}
	return nil
}

// Has reports membership; non-object lookups always report absent rather
// than erroring (spec.md §4.4: "lookups of primitives return absent").
func (s *WeakSet) Has(v value.Value) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := s.members[v.AsRef()]
	return ok
}

// Delete removes a member, reporting whether it was present.
func (s *WeakSet) Delete(v value.Value) bool {
	if !v.IsObject() {
		return false
	}
	r := v.AsRef()
	if _, ok := s.members[r]; !ok {
		return false
	}
	delete(s.members, r)
	return true
}

// Prune drops every member for which isReachable reports false.
func (s *WeakSet) Prune(isReachable func(value.Ref) bool) {
	for r := range s.members {
		if !isReachable(r) {
			delete(s.members, r)
		}
	}
}

// WeakMap holds object-only keys, subject to Prune.
type WeakMap struct {
	entries map[value.Ref]value.Value
}

// NewWeakMap creates an empty WeakMap.
func NewWeakMap() *WeakMap { return &WeakMap{entries: map[value.Ref]value.Value{}} }

// Set installs or updates key's value; key must be an object.
func (m *WeakMap) Set(key, val value.Value) error {
	if err := requireObjectKey(key); err != nil {
		return err
	}
	m.entries[key.AsRef()] = val
	return nil
}

// Get returns the stored value and whether key was present.
func (m *WeakMap) Get(key value.Value) (value.Value, bool) {
	if !key.IsObject() {
		return value.Undefined, false
	}
	v, ok := m.entries[key.AsRef()]
	return v, ok
}

// Has reports key membership.
func (m *WeakMap) Has(key value.Value) bool {
	if !key.IsObject() {
		return false
	}
	_, ok := m.entries[key.AsRef()]
	return ok
}

// Delete removes key, reporting whether it was present.
func (m *WeakMap) Delete(key value.Value) bool {
	if !key.IsObject() {
		return false
	}
	r := key.AsRef()
	if _, ok := m.entries[r]; !ok {
		return false
	}
	delete(m.entries, r)
	return true
}

// Prune drops every entry whose key is no longer reachable.
func (m *WeakMap) Prune(isReachable func(value.Ref) bool) {
	for r := range m.entries {
		if !isReachable(r) {
			delete(m.entries, r)
		}
	}
}
