// Package value implements the engine's polymorphic value space: the
// undefined/null sentinels, booleans, IEEE-754 numbers, arbitrary-precision
// BigInt, strings, interned Symbols, and object references.
package value

import (
	"math"
	"math/big"
)

// Kind tags the payload a Value holds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Ref is an opaque handle into a realm's object arena. It stands in for a
// Go pointer so that prototype-chain cycles don't become Go-level
// reference cycles; Ref is only meaningful relative to the Arena that
// minted it (see the object package).
type Ref struct {
	id uint32
}

// Valid reports whether r was ever assigned by an Arena (the zero Ref is
// never a valid handle).
func (r Ref) Valid() bool { return r.id != 0 }

// NewRef is used only by object.Arena to mint handles.
func NewRef(id uint32) Ref { return Ref{id: id} }

// ID returns the raw arena index, for use by the object package only.
func (r Ref) ID() uint32 { return r.id }

// Value is the polymorphic slot described in spec.md §3. The zero Value is
// Undefined.
type Value struct {
	kind Kind
	b    bool
	n    float64
	big  *big.Int
	str  string
	sym  *Symbol
	obj  Ref
}

// Undefined is the distinguished "no value" sentinel.
var Undefined = Value{kind: KindUndefined}

// Null is the distinguished "explicit absence" sentinel.
var Null = Value{kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Number wraps an IEEE-754 double.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// BigIntValue wraps an arbitrary-precision integer. v is not aliased by
// the caller afterwards.
func BigIntValue(v *big.Int) Value { return Value{kind: KindBigInt, big: new(big.Int).Set(v)} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// SymbolValue wraps an interned Symbol.
func SymbolValue(s *Symbol) Value { return Value{kind: KindSymbol, sym: s} }

// Object wraps an object-arena handle.
func Object(r Ref) Value { return Value{kind: KindObject, obj: r} }

// Kind reports which payload v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsObject() bool    { return v.kind == KindObject }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsBigInt() bool    { return v.kind == KindBigInt }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }

// ToBoolean applies ECMA-262 ToBoolean (§7.1.2).
func (v Value) ToBoolean() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindBigInt:
		return v.big.Sign() != 0
	case KindString:
		return v.str != ""
	case KindSymbol, KindObject:
		return true
	default:
		return false
	}
}

// AsBool returns the payload of a boolean Value; callers must check Kind first.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the payload of a number Value; callers must check Kind first.
func (v Value) AsNumber() float64 { return v.n }

// AsBigInt returns the payload of a bigint Value; callers must check Kind first.
func (v Value) AsBigInt() *big.Int { return v.big }

// AsString returns the payload of a string Value; callers must check Kind first.
func (v Value) AsString() string { return v.str }

// AsSymbol returns the payload of a symbol Value; callers must check Kind first.
func (v Value) AsSymbol() *Symbol { return v.sym }

// AsRef returns the payload of an object Value; callers must check Kind first.
func (v Value) AsRef() Ref { return v.obj }

// SameValueZero implements ECMA-262 §7.2.12: strict equality except
// NaN≡NaN and +0≡−0 (the two are NOT distinguished, unlike SameValue).
func SameValueZero(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// StrictEquals implements ECMA-262 §7.2.16 (===): like SameValueZero but
// +0 and −0 compare equal through normal float equality (already true
// here) and, crucially, differs from SameValueZero only in NaN handling.
func StrictEquals(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		return a.n == b.n // NaN != NaN falls out of IEEE-754 comparison
	}
	return SameValueZero(a, b)
}
