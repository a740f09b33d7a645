package object

import "github.com/go-ecma/engine/value"

// Descriptor is a partial property-descriptor record (spec.md §3): each
// field has a companion "present" bit so that a partial descriptor
// (as passed to Object.defineProperty) can be distinguished from one that
// explicitly sets a field to its zero value.
type Descriptor struct {
	Value      value.Value
	HasValue   bool
	Writable   bool
	HasWritable bool

	Get    value.Value // object.Ref wrapped as value.Value, or Undefined
	HasGet bool
	Set    value.Value
	HasSet bool

	Enumerable    bool
	HasEnumerable bool
	Configurable  bool
	HasConfigurable bool
}

// IsDataDescriptor reports whether d carries a data-descriptor field
// (spec.md §3: "data if it carries value or writable").
func (d Descriptor) IsDataDescriptor() bool { return d.HasValue || d.HasWritable }

// IsAccessorDescriptor reports whether d carries an accessor-descriptor
// field ("accessor if it carries get or set").
func (d Descriptor) IsAccessorDescriptor() bool { return d.HasGet || d.HasSet }

// IsGenericDescriptor reports whether d carries neither ("generic
// otherwise").
func (d Descriptor) IsGenericDescriptor() bool {
	return !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

// withDefaults fills omitted boolean attributes per ECMA-262 §6.2.5: a
// brand new slot on an object defaults every omitted boolean to false.
func (d Descriptor) withDefaults() Descriptor {
	if !d.HasWritable {
		d.Writable = false
	}
	if !d.HasEnumerable {
		d.Enumerable = false
	}
	if !d.HasConfigurable {
		d.Configurable = false
	}
	if d.IsAccessorDescriptor() {
		if !d.HasGet {
			d.Get = value.Undefined
		}
		if !d.HasSet {
			d.Set = value.Undefined
		}
	} else if !d.HasValue {
		d.Value = value.Undefined
	}
	return d
}

// complete returns a fully-populated Descriptor (all present bits true),
// used for the get-own-property-descriptor round trip (spec.md §8
// "Round-trip" property).
func (d Descriptor) complete() Descriptor {
	d.HasValue = true
	d.HasWritable = true
	d.HasGet = true
	d.HasSet = true
	d.HasEnumerable = true
	d.HasConfigurable = true
	if !d.IsAccessorDescriptor() {
		d.Get, d.Set = value.Undefined, value.Undefined
	}
	return d
}

// DataDescriptor builds a fully-specified data descriptor.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Value: v, HasValue: true,
		Writable: writable, HasWritable: true,
		Enumerable: enumerable, HasEnumerable: true,
		Configurable: configurable, HasConfigurable: true,
	}
}

// AccessorDescriptor builds a fully-specified accessor descriptor.
func AccessorDescriptor(get, set value.Value, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Get: get, HasGet: true,
		Set: set, HasSet: true,
		Enumerable: enumerable, HasEnumerable: true,
		Configurable: configurable, HasConfigurable: true,
	}
}

// validateAndApply implements ECMA-262 §9.1.6.3
// ValidateAndApplyPropertyDescriptor, merging desc onto current (which may
// be absent) and reporting whether the result is acceptable.
//
// extensible applies only when current is absent (a brand new own
// property); hadCurrent distinguishes "absent" from "present but zero
// value" for current.
func validateAndApply(current Descriptor, hadCurrent, extensible bool, desc Descriptor) (Descriptor, bool) {
	if !hadCurrent {
		if !extensible {
			return Descriptor{}, false
		}
		return desc.withDefaults(), true
	}

	// Every field absent from desc: no-op success (ECMA-262 step 2).
	if !desc.HasValue && !desc.HasWritable && !desc.HasGet && !desc.HasSet &&
		!desc.HasEnumerable && !desc.HasConfigurable {
		return current, true
	}

	if !current.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return Descriptor{}, false
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return Descriptor{}, false
		}
		if !desc.IsGenericDescriptor() && desc.IsAccessorDescriptor() != current.IsAccessorDescriptor() {
			return Descriptor{}, false
		}
		if current.IsAccessorDescriptor() {
			if desc.HasGet && !sameValueOrRef(desc.Get, current.Get) {
				return Descriptor{}, false
			}
			if desc.HasSet && !sameValueOrRef(desc.Set, current.Set) {
				return Descriptor{}, false
			}
		} else if !current.Writable {
			if desc.HasWritable && desc.Writable {
				return Descriptor{}, false
			}
			if desc.HasValue && !sameValueOrRef(desc.Value, current.Value) {
				return Descriptor{}, false
			}
		}
	}

	merged := current
	if desc.IsGenericDescriptor() {
		// merge scalar attribute changes only
	} else if desc.IsDataDescriptor() != current.IsDataDescriptor() {
		// switching kind: discard the old descriptor's value/accessor half
		merged = Descriptor{
			Enumerable: current.Enumerable, HasEnumerable: true,
			Configurable: current.Configurable, HasConfigurable: true,
		}
		if desc.IsDataDescriptor() {
			merged.Value, merged.HasValue = value.Undefined, true
			merged.Writable, merged.HasWritable = false, true
		} else {
			merged.Get, merged.HasGet = value.Undefined, true
			merged.Set, merged.HasSet = value.Undefined, true
		}
	}

	if desc.HasValue {
		merged.Value, merged.HasValue = desc.Value, true
	}
	if desc.HasWritable {
		merged.Writable, merged.HasWritable = desc.Writable, true
	}
	if desc.HasGet {
		merged.Get, merged.HasGet = desc.Get, true
	}
	if desc.HasSet {
		merged.Set, merged.HasSet = desc.Set, true
	}
	if desc.HasEnumerable {
		merged.Enumerable, merged.HasEnumerable = desc.Enumerable, true
	}
	if desc.HasConfigurable {
		merged.Configurable, merged.HasConfigurable = desc.Configurable, true
	}
	return merged, true
}

// sameValueOrRef compares descriptor field values using SameValue-like
// semantics (object fields compare as Refs, which value.SameValueZero
// already does correctly via the Kind==KindObject branch).
func sameValueOrRef(a, b value.Value) bool {
	return value.SameValueZero(a, b)
}
