// Package arraylib implements spec.md §4.2: dense/sparse array storage,
// length coercion semantics, the hole sentinel, and the iterator protocol.
package arraylib

import (
	"math"

	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

const denseThresholdDefault = 1_000_000

// slot is a dense-storage cell: present distinguishes an assigned value
// from a hole (spec.md §3 "a hole sentinel distinct from undefined").
type slot struct {
	value   value.Value
	present bool
}

// Array is the Array exotic object (spec.md §4.2). It embeds an Ordinary
// for non-indexed own properties (anything assigned that isn't an
// array-index key or "length") and maintains its own dense/sparse
// storage for indexed elements, bypassing the descriptor map entirely for
// the common case.
type Array struct {
	*object.Ordinary

	dense  []slot // indices [0, len(dense))
	sparse map[uint32]value.Value // indices >= len(dense), never holes

	length uint32

	denseThreshold uint32
	fs             *frozenState
}

// New creates an empty array with the given prototype.
func New(proto value.Value) *Array {
	o := object.NewOrdinary(proto)
	o.SetClass("Array")
	return &Array{Ordinary: o, denseThreshold: denseThresholdDefault}
}

// WithDenseThreshold overrides the dense/sparse cutover point (engine.Options
// ArrayDenseThreshold, spec.md §3 "≈10^6 elements").
func (arr *Array) WithDenseThreshold(n uint32) *Array {
	arr.denseThreshold = n
	return arr
}

func (arr *Array) Class() string { return "Array" }

// Length returns the current length.
func (arr *Array) Length() uint32 { return arr.length }

// Get reads index i; out-of-bounds and holes both yield Undefined, not
// a hole value (spec.md §4.2 "out-of-bounds reads return the undefined
// sentinel, not a hole").
func (arr *Array) Get(i uint32) value.Value {
	if i < uint32(len(arr.dense)) {
		s := arr.dense[i]
		if s.present {
			return s.value
		}
		return value.Undefined
	}
	if v, ok := arr.sparse[i]; ok {
		return v
	}
	return value.Undefined
}

// Has reports whether index i is present (own, non-hole).
func (arr *Array) Has(i uint32) bool {
	if i < uint32(len(arr.dense)) {
		return arr.dense[i].present
	}
	_, ok := arr.sparse[i]
	return ok
}

// SetIndex implements spec.md §4.2: "Setting index i >= length grows
// length to i+1."
func (arr *Array) SetIndex(i uint32, v value.Value) {
	if i >= arr.denseThreshold {
		if arr.sparse == nil {
			arr.sparse = map[uint32]value.Value{}
		}
		arr.sparse[i] = v
	} else {
		if i >= uint32(len(arr.dense)) {
			grown := make([]slot, i+1)
			copy(grown, arr.dense)
			arr.dense = grown
		}
		arr.dense[i] = slot{value: v, present: true}
	}
	if i+1 > arr.length {
		arr.length = i + 1
	}
}

// DeleteIndex removes index i, leaving a hole (spec.md §4.2 iteration:
// "holes as undefined"); length is unaffected (array `delete` never
// shrinks length, only `length=` assignment and the mutator methods do).
func (arr *Array) DeleteIndex(i uint32) {
	if i < uint32(len(arr.dense)) {
		arr.dense[i] = slot{}
		return
	}
	delete(arr.sparse, i)
}

// SetLength implements the ArraySetLength algorithm (spec.md §4.2,
// ECMA-262 §10.4.2.4): coerce to uint32, reject non-integral or
// negative/overflowing values, then truncate if shrinking.
func (arr *Array) SetLength(n float64) error {
	u32 := uint32(n)
	if n != math.Trunc(n) || n < 0 || n > math.MaxUint32 || float64(u32) != n {
		return jserror.New(jserror.RangeError, "Invalid array length")
	}
	if u32 < arr.length {
		if u32 < uint32(len(arr.dense)) {
			arr.dense = arr.dense[:u32]
		}
		for k := range arr.sparse {
			if k >= u32 {
				delete(arr.sparse, k)
			}
		}
	}
	arr.length = u32
	return nil
}

// Push appends values, updating length, and returns the new length.
func (arr *Array) Push(vs ...value.Value) uint32 {
	for _, v := range vs {
		arr.SetIndex(arr.length, v)
	}
	return arr.length
}

// Pop removes and returns the last element, or Undefined if empty.
func (arr *Array) Pop() value.Value {
	if arr.length == 0 {
		return value.Undefined
	}
	last := arr.length - 1
	v := arr.Get(last)
	arr.DeleteIndex(last)
	_ = arr.SetLength(float64(last))
	return v
}

// Shift removes and returns the first element, shifting the rest down.
func (arr *Array) Shift() value.Value {
	if arr.length == 0 {
		return value.Undefined
	}
	first := arr.Get(0)
	for i := uint32(1); i < arr.length; i++ {
		if arr.Has(i) {
			arr.SetIndex(i-1, arr.Get(i))
		} else {
			arr.DeleteIndex(i - 1)
		}
	}
	arr.DeleteIndex(arr.length - 1)
	_ = arr.SetLength(float64(arr.length - 1))
	return first
}

// Unshift prepends values, shifting existing elements up.
func (arr *Array) Unshift(vs ...value.Value) uint32 {
	n := uint32(len(vs))
	if n == 0 {
		return arr.length
	}
	for i := arr.length; i > 0; i-- {
		idx := i - 1
		if arr.Has(idx) {
			arr.SetIndex(idx+n, arr.Get(idx))
		} else {
			arr.DeleteIndex(idx + n)
		}
	}
	for i, v := range vs {
		arr.SetIndex(uint32(i), v)
	}
	return arr.length
}

// Reverse reverses elements in place, preserving holes.
func (arr *Array) Reverse() {
	for i, j := uint32(0), arr.length; i < j; i, j = i+1, j-1 {
		lo, hi := i, j-1
		if lo >= hi {
			break
		}
		loHas, hiHas := arr.Has(lo), arr.Has(hi)
		loVal, hiVal := arr.Get(lo), arr.Get(hi)
		if hiHas {
			arr.SetIndex(lo, hiVal)
		} else {
			arr.DeleteIndex(lo)
		}
		if loHas {
			arr.SetIndex(hi, loVal)
		} else {
			arr.DeleteIndex(hi)
		}
	}
}

// Splice implements the core of Array.prototype.splice: removes
// deleteCount elements starting at start and inserts items in their
// place, returning the removed elements.
func (arr *Array) Splice(start, deleteCount uint32, items ...value.Value) []value.Value {
	if start > arr.length {
		start = arr.length
	}
	if deleteCount > arr.length-start {
		deleteCount = arr.length - start
	}

	removed := make([]value.Value, deleteCount)
	for i := uint32(0); i < deleteCount; i++ {
		removed[i] = arr.Get(start + i)
	}

	tail := make([]slot, 0, arr.length-start-deleteCount)
	for i := start + deleteCount; i < arr.length; i++ {
		if arr.Has(i) {
			tail = append(tail, slot{value: arr.Get(i), present: true})
		} else {
			tail = append(tail, slot{})
		}
	}

	newLen := start
	for _, it := range items {
		arr.SetIndex(newLen, it)
		newLen++
	}
	for _, s := range tail {
		if s.present {
			arr.SetIndex(newLen, s.value)
		} else {
			arr.DeleteIndex(newLen)
			if newLen+1 > arr.length {
				arr.length = newLen + 1
			}
		}
		newLen++
	}
	_ = arr.SetLength(float64(newLen))

	return removed
}

// Iterator returns a next() closure per spec.md §4.2: "returns {value,
// done} and treats holes as undefined".
func (arr *Array) Iterator() func() (v value.Value, done bool) {
	i := uint32(0)
	return func() (value.Value, bool) {
		if i >= arr.length {
			return value.Undefined, true
		}
		v := arr.Get(i)
		i++
		return v, false
	}
}
