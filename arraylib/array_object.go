package arraylib

import (
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

var lengthKey = object.StringKey("length")

// indicesFrozen additionally locks SetIndex/DeleteIndex once Freeze() has
// been called, since the dense/sparse storage has no per-slot writable
// bit of its own (spec.md §4.2 describes `length` as the only descriptor
// actually materialized; indexed slots are bypassed entirely).
type frozenState struct {
	extensible     bool
	indicesFrozen  bool
	lengthWritable bool
}

func (arr *Array) state() *frozenState {
	if arr.fs == nil {
		arr.fs = &frozenState{extensible: true, lengthWritable: true}
	}
	return arr.fs
}

// TryGet overrides Ordinary.TryGet to special-case "length" and
// array-index keys (spec.md §4.2).
func (arr *Array) TryGet(a *object.Arena, key object.Key, receiver value.Value) (value.Value, bool, error) {
	if key == lengthKey {
		return value.Number(float64(arr.length)), true, nil
	}
	if idx, ok := indexOf(key); ok {
		if arr.Has(idx) {
			return arr.Get(idx), true, nil
		}
		return arr.Ordinary.TryGet(a, key, receiver)
	}
	return arr.Ordinary.TryGet(a, key, receiver)
}

func (arr *Array) Set(a *object.Arena, key object.Key, v value.Value, receiver value.Value) error {
	if key == lengthKey {
		if !arr.state().lengthWritable {
			return nil
		}
		if v.IsNumber() {
			return arr.SetLength(v.AsNumber())
		}
		return arr.Ordinary.Set(a, key, v, receiver)
	}
	if idx, ok := indexOf(key); ok {
		if arr.state().indicesFrozen {
			return nil
		}
		arr.SetIndex(idx, v)
		return nil
	}
	return arr.Ordinary.Set(a, key, v, receiver)
}

func (arr *Array) Define(a *object.Arena, key object.Key, desc object.Descriptor) (bool, error) {
	if key == lengthKey {
		if desc.HasConfigurable && desc.Configurable {
			return false, nil
		}
		if desc.HasEnumerable && desc.Enumerable {
			return false, nil
		}
		if desc.HasWritable && !desc.Writable {
			arr.state().lengthWritable = false
		}
		if desc.HasValue {
			if !arr.state().lengthWritable {
				return false, nil
			}
			if !desc.Value.IsNumber() {
				return false, nil
			}
			if err := arr.SetLength(desc.Value.AsNumber()); err != nil {
				return false, nil
			}
		}
		return true, nil
	}
	if idx, ok := indexOf(key); ok {
		if arr.state().indicesFrozen {
			return false, nil
		}
		if desc.HasValue {
			arr.SetIndex(idx, desc.Value)
		}
		return true, nil
	}
	return arr.Ordinary.Define(a, key, desc)
}

func (arr *Array) GetOwnDescriptor(key object.Key) (object.Descriptor, bool) {
	if key == lengthKey {
		return object.DataDescriptor(value.Number(float64(arr.length)), arr.state().lengthWritable, false, false), true
	}
	if idx, ok := indexOf(key); ok {
		if !arr.Has(idx) {
			return object.Descriptor{}, false
		}
		return object.DataDescriptor(arr.Get(idx), !arr.state().indicesFrozen, true, true), true
	}
	return arr.Ordinary.GetOwnDescriptor(key)
}

func (arr *Array) Delete(key object.Key) bool {
	if key == lengthKey {
		return false // length is non-configurable
	}
	if idx, ok := indexOf(key); ok {
		arr.DeleteIndex(idx)
		return true
	}
	return arr.Ordinary.Delete(key)
}

func (arr *Array) OwnKeys() []object.Key {
	keys := make([]object.Key, 0, arr.length+1)
	for i := uint32(0); i < arr.length; i++ {
		if arr.Has(i) {
			keys = append(keys, object.StringKey(uitoaArr(i)))
		}
	}
	keys = append(keys, lengthKey)
	keys = append(keys, arr.Ordinary.OwnKeys()...)
	return keys
}

func (arr *Array) IsExtensible() bool  { return arr.state().extensible && arr.Ordinary.IsExtensible() }
func (arr *Array) PreventExtensions()  { arr.state().extensible = false; arr.Ordinary.PreventExtensions() }
func (arr *Array) Seal() {
	arr.state().extensible = false
	arr.Ordinary.Seal()
}
func (arr *Array) Freeze() {
	arr.state().extensible = false
	arr.state().indicesFrozen = true
	arr.state().lengthWritable = false
	arr.Ordinary.Freeze()
}
func (arr *Array) IsSealed() bool { return !arr.state().extensible && arr.Ordinary.IsSealed() }
func (arr *Array) IsFrozen() bool {
	return arr.state().indicesFrozen && !arr.state().lengthWritable && arr.Ordinary.IsFrozen()
}

func indexOf(key object.Key) (uint32, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	return arrayIndexOf(key.String())
}

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

func uitoaArr(n uint32) string {
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
