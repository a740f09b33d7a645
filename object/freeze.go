package object

import "github.com/go-ecma/engine/value"

// FreezeDeep freezes v and, if v is an object, recursively freezes every
// own-property value that is itself an object — grounded on the
// teacher's common.FreezeObject helper (js/common/frozen_object_test.go),
// which k6 uses to lock down host-exposed module objects against script
// mutation.
func FreezeDeep(a *Arena, v value.Value) {
	freezeDeep(a, v, map[Object]bool{})
}

func freezeDeep(a *Arena, v value.Value, seen map[Object]bool) {
	if !v.IsObject() {
		return
	}
	obj := a.Resolve(v)
	if seen[obj] {
		return
	}
	seen[obj] = true

	obj.Freeze()
	for _, k := range obj.OwnKeys() {
		d, ok := obj.GetOwnDescriptor(k)
		if !ok || !d.IsDataDescriptor() {
			continue
		}
		freezeDeep(a, d.Value, seen)
	}
}
