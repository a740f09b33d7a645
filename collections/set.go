// Package collections implements spec.md §4.4: Set, Map, WeakSet, WeakMap
// with insertion order and SameValueZero equality/membership.
package collections

import "github.com/go-ecma/engine/value"

// normalizedKey canonicalizes a Value for use as a Go map key under
// SameValueZero semantics: NaN and -0 need special-casing since Go's
// built-in equality (used by map key comparison) treats NaN!=NaN and
// would also box -0/+0 identically already (float64 -0==0 is true in Go,
// which happens to already match SameValueZero here).
type normalizedKey struct {
	kind value.Kind
	num  float64
	nan  bool
	str  string
	sym  *value.Symbol
	obj  value.Ref
	b    bool
}

func normalize(v value.Value) normalizedKey {
	k := normalizedKey{kind: v.Kind()}
	switch v.Kind() {
	case value.KindNumber:
		n := v.AsNumber()
		if n != n { // NaN: every NaN observed collapses to one map key, kept
			// apart from every real number by the nan flag (SameValueZero: NaN≡NaN).
			k.nan = true
		} else if n == 0 {
			k.num = 0 // +0 and -0 both canonicalize to +0
		} else {
			k.num = n
		}
	case value.KindString:
		k.str = v.AsString()
	case value.KindSymbol:
		k.sym = v.AsSymbol()
	case value.KindObject:
		k.obj = v.AsRef()
	case value.KindBoolean:
		k.b = v.AsBool()
	case value.KindBigInt:
		k.str = v.AsBigInt().String()
	}
	return k
}

// entry pairs a canonical key with the original Value (for iteration,
// which must observe the original, not the canonicalized, payload) plus
// insertion sequence for ordering.
type entry struct {
	key Value
	seq int
}

// Value is re-exported so callers don't need both packages for the common
// case; collections only ever stores/returns value.Value.
type Value = value.Value

// Set preserves insertion order with SameValueZero deduplication (spec.md
// §4.4).
type Set struct {
	index map[normalizedKey]int // normalized key -> position in order
	order []entry
	seq   int
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{index: map[normalizedKey]int{}}
}

// Add inserts v if not already present (SameValueZero), per spec.md §8
// scenario 5: `new Set([1,1,NaN,NaN])` dedups to `[1, NaN]`.
func (s *Set) Add(v Value) {
	k := normalize(v)
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = len(s.order)
	s.order = append(s.order, entry{key: v, seq: s.seq})
	s.seq++
}

// Has reports SameValueZero membership.
func (s *Set) Has(v Value) bool {
	_, ok := s.index[normalize(v)]
	return ok
}

// Delete removes v, reporting whether it was present.
func (s *Set) Delete(v Value) bool {
	k := normalize(v)
	pos, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	for kk, p := range s.index {
		if p > pos {
			s.index[kk] = p - 1
		}
	}
	return true
}

// Size returns the element count.
func (s *Set) Size() int { return len(s.order) }

// Values returns elements in insertion order.
func (s *Set) Values() []Value {
	out := make([]Value, len(s.order))
	for i, e := range s.order {
		out[i] = e.key
	}
	return out
}

// ForEach invokes fn with each element in insertion order. fn receives the
// element only; the (value, value, set) triple of the script-level Set
// callback is not built here.
func (s *Set) ForEach(fn func(v Value)) {
	for _, e := range s.order {
		fn(e.key)
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.index = map[normalizedKey]int{}
	s.order = nil
}
