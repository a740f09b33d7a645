package collections

// mapEntry pairs a key/value pair for Map, preserving the original
// (non-canonicalized) key for iteration.
type mapEntry struct {
	key, val Value
}

// Map preserves insertion order with SameValueZero key equality (spec.md §4.4).
type Map struct {
	index map[normalizedKey]int
	order []mapEntry
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{index: map[normalizedKey]int{}}
}

// Set inserts or updates the value for key.
func (m *Map) Set(key, val Value) {
	k := normalize(key)
	if pos, ok := m.index[k]; ok {
		m.order[pos].val = val
		return
	}
	m.index[k] = len(m.order)
	m.order = append(m.order, mapEntry{key: key, val: val})
}

// Get returns the stored value and whether key was present.
func (m *Map) Get(key Value) (Value, bool) {
	pos, ok := m.index[normalize(key)]
	if !ok {
		return Value{}, false
	}
	return m.order[pos].val, true
}

// Has reports key membership.
func (m *Map) Has(key Value) bool {
	_, ok := m.index[normalize(key)]
	return ok
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key Value) bool {
	k := normalize(key)
	pos, ok := m.index[k]
	if !ok {
		return false
	}
	delete(m.index, k)
	m.order = append(m.order[:pos], m.order[pos+1:]...)
	for kk, p := range m.index {
		if p > pos {
			m.index[kk] = p - 1
		}
	}
	return true
}

// Size returns the entry count.
func (m *Map) Size() int { return len(m.order) }

// ForEach invokes fn(value, key) per entry in insertion order, value first
// as in the script-level Map callback; the map itself is not passed.
func (m *Map) ForEach(fn func(val, key Value)) {
	for _, e := range m.order {
		fn(e.val, e.key)
	}
}

// Entries returns (key, value) pairs in insertion order.
func (m *Map) Entries() (keys, vals []Value) {
	keys = make([]Value, len(m.order))
	vals = make([]Value, len(m.order))
	for i, e := range m.order {
		keys[i] = e.key
		vals[i] = e.val
	}
	return keys, vals
}

// Clear empties the map.
func (m *Map) Clear() {
	m.index = map[normalizedKey]int{}
	m.order = nil
}
