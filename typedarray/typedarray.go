package typedarray

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/value"
)

// ElementKind enumerates the typed-array element kinds (spec.md §3
// "TypedArray view").
type ElementKind uint8

const (
	U8 ElementKind = iota
	I8
	U8Clamped
	U16
	I16
	U32
	I32
	F32
	F64
	BigInt64
	BigUint64
)

// BytesPerElement returns the element's byte width.
func (k ElementKind) BytesPerElement() int {
	switch k {
	case U8, I8, U8Clamped:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case F64, BigInt64, BigUint64:
		return 8
	default:
		return 1
	}
}

// IsBigIntKind reports whether k requires BigInt values (spec.md §4.3:
// "BigInt64/BigUint64 variants require BigInt input and reject Number").
func (k ElementKind) IsBigIntKind() bool { return k == BigInt64 || k == BigUint64 }

// View is a TypedArray view over an ArrayBuffer (spec.md §3 "TypedArray view").
type View struct {
	buffer         *ArrayBuffer
	byteOffset     int
	kind           ElementKind
	fixedLength    int  // -1 if length-tracking
	lengthTracking bool
}

// NewView constructs a view. length=-1 requests a length-tracking view
// (spec.md §4.3: "length is ... recomputed on every read as
// max(0, buffer.byteLength - byteOffset) / bytesPerElement").
func NewView(buf *ArrayBuffer, byteOffset int, kind ElementKind, length int) (*View, error) {
	bpe := kind.BytesPerElement()
	if byteOffset < 0 || byteOffset%bpe != 0 {
		return nil, jserror.New(jserror.RangeError, "start offset is not aligned to element size")
	}
	v := &View{buffer: buf, byteOffset: byteOffset, kind: kind}
	if length < 0 {
		v.lengthTracking = true
		v.fixedLength = -1
	} else {
		if byteOffset+length*bpe > buf.ByteLength() {
			return nil, jserror.New(jserror.RangeError, "typed array length out of bounds for buffer")
		}
		v.fixedLength = length
	}
	return v, nil
}

// Buffer returns the backing ArrayBuffer.
func (v *View) Buffer() *ArrayBuffer { return v.buffer }

// Kind returns the element kind.
func (v *View) Kind() ElementKind { return v.kind }

// ByteOffset returns the view's starting byte offset.
func (v *View) ByteOffset() int { return v.byteOffset }

// Length recomputes (for length-tracking views) or returns the fixed
// element count (spec.md §4.3).
func (v *View) Length() int {
	if v.lengthTracking {
		avail := v.buffer.ByteLength() - v.byteOffset
		if avail < 0 {
			avail = 0
		}
		return avail / v.kind.BytesPerElement()
	}
	return v.fixedLength
}

// OutOfBounds reports whether v is detached or, for a fixed-length view,
// its window no longer fits the (possibly shrunk) buffer (spec.md §4.3:
// "Any access on a detached or out-of-bounds view raises TypeError").
func (v *View) OutOfBounds() bool {
	if v.buffer.Detached() {
		return true
	}
	if v.lengthTracking {
		return v.byteOffset > v.buffer.ByteLength()
	}
	need := v.byteOffset + v.fixedLength*v.kind.BytesPerElement()
	return need > v.buffer.ByteLength()
}

func (v *View) checkBounds(i int) error {
	if v.OutOfBounds() {
		return jserror.New(jserror.TypeError, "typed array is out of bounds")
	}
	if i < 0 || i >= v.Length() {
		return jserror.New(jserror.RangeError, "typed array index out of range")
	}
	return nil
}

func (v *View) byteAt(i int) int { return v.byteOffset + i*v.kind.BytesPerElement() }

// Get reads element i, little-endian (spec.md §4.3: "Element set/get uses
// little-endian host format for multi-byte types").
func (v *View) Get(i int) (value.Value, error) {
	if err := v.checkBounds(i); err != nil {
		return value.Undefined, err
	}
	b := v.buffer.Bytes()
	off := v.byteAt(i)
	switch v.kind {
	case U8:
		return value.Number(float64(b[off])), nil
	case I8:
		return value.Number(float64(int8(b[off]))), nil
	case U8Clamped:
		return value.Number(float64(b[off])), nil
	case U16:
		return value.Number(float64(binary.LittleEndian.Uint16(b[off:]))), nil
	case I16:
		return value.Number(float64(int16(binary.LittleEndian.Uint16(b[off:])))), nil
	case U32:
		return value.Number(float64(binary.LittleEndian.Uint32(b[off:]))), nil
	case I32:
		return value.Number(float64(int32(binary.LittleEndian.Uint32(b[off:])))), nil
	case F32:
		return value.Number(float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))), nil
	case F64:
		return value.Number(math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))), nil
	case BigInt64:
		u := binary.LittleEndian.Uint64(b[off:])
		return value.BigIntValue(big.NewInt(int64(u))), nil
	case BigUint64:
		u := binary.LittleEndian.Uint64(b[off:])
		return value.BigIntValue(new(big.Int).SetUint64(u)), nil
	default:
		return value.Undefined, jserror.New(jserror.Internal, "unknown element kind")
	}
}

// Set writes element i, enforcing BigInt-vs-Number segregation and
// Uint8Clamped round-half-to-even clamping (spec.md §4.3).
func (v *View) Set(i int, val value.Value) error {
	if err := v.checkBounds(i); err != nil {
		return err
	}
	b := v.buffer.Bytes()
	off := v.byteAt(i)

	if v.kind.IsBigIntKind() {
		if !val.IsBigInt() {
			return jserror.New(jserror.TypeError, "cannot convert Number to BigInt typed array element")
		}
		bi := val.AsBigInt()
		mask := new(big.Int).Lsh(big.NewInt(1), 64)
		m := new(big.Int).Mod(bi, mask)
		if m.Sign() < 0 {
			m.Add(m, mask)
		}
		binary.LittleEndian.PutUint64(b[off:], m.Uint64())
		return nil
	}
	if !val.IsNumber() {
		return jserror.New(jserror.TypeError, "cannot convert non-numeric value to typed array element")
	}
	n := val.AsNumber()

	switch v.kind {
	case U8:
		b[off] = byte(toIntMod(n, 256))
	case I8:
		b[off] = byte(int8(toIntMod(n, 256)))
	case U8Clamped:
		b[off] = clampU8(n)
	case U16:
		binary.LittleEndian.PutUint16(b[off:], uint16(toIntMod(n, 65536)))
	case I16:
		binary.LittleEndian.PutUint16(b[off:], uint16(int16(toIntMod(n, 65536))))
	case U32:
		binary.LittleEndian.PutUint32(b[off:], uint32(toIntMod(n, 4294967296)))
	case I32:
		binary.LittleEndian.PutUint32(b[off:], uint32(int32(toIntMod(n, 4294967296))))
	case F32:
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(n)))
	case F64:
		binary.LittleEndian.PutUint64(b[off:], math.Float64bits(n))
	default:
		return jserror.New(jserror.Internal, "unknown element kind")
	}
	return nil
}

// toIntMod implements ToIntegerOrInfinity + modulo wraparound for the
// fixed-width integer element kinds (ECMA-262 §7.1.7-ish IntegerToInt).
func toIntMod(n float64, mod int64) int64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	i := int64(math.Trunc(n))
	m := i % mod
	if m < 0 {
		m += mod
	}
	return m
}

// clampU8 implements Uint8ClampedArray's round-half-to-even clamping
// (spec.md §4.3).
func clampU8(n float64) byte {
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n >= 255 {
		return 255
	}
	return byte(math.RoundToEven(n))
}

// Subarray creates a new view over the same buffer (spec.md §4.3:
// "subarray creates a new view over the same buffer").
func (v *View) Subarray(begin, end int) (*View, error) {
	l := v.Length()
	begin = normalizeIndex(begin, l)
	end = normalizeIndex(end, l)
	if end < begin {
		end = begin
	}
	bpe := v.kind.BytesPerElement()
	newOffset := v.byteOffset + begin*bpe
	if v.lengthTracking {
		return NewView(v.buffer, newOffset, v.kind, -1)
	}
	return NewView(v.buffer, newOffset, v.kind, end-begin)
}

// Slice creates a fresh buffer (spec.md §4.3: "slice creates a fresh buffer").
func (v *View) Slice(begin, end int) (*View, error) {
	l := v.Length()
	begin = normalizeIndex(begin, l)
	end = normalizeIndex(end, l)
	if end < begin {
		end = begin
	}
	bpe := v.kind.BytesPerElement()
	newBuf := NewArrayBuffer((end - begin) * bpe)
	copy(newBuf.Bytes(), v.buffer.Bytes()[v.byteAt(begin):v.byteAt(end)])
	return NewView(newBuf, 0, v.kind, end-begin)
}

// IndexOf implements spec.md §4.3 §23.2.3 ordering: snapshot length
// before argument coercion (done by the caller), re-check detached state
// between iterations.
func (v *View) IndexOf(target value.Value, fromIndex int) (int, error) {
	length := v.Length()
	if fromIndex < 0 {
		fromIndex += length
		if fromIndex < 0 {
			fromIndex = 0
		}
	}
	for i := fromIndex; i < length; i++ {
		if v.OutOfBounds() {
			return -1, jserror.New(jserror.TypeError, "typed array is out of bounds")
		}
		got, err := v.Get(i)
		if err != nil {
			return -1, err
		}
		if value.StrictEquals(got, target) {
			return i, nil
		}
	}
	return -1, nil
}

// Includes is IndexOf with SameValueZero semantics (so NaN/NaN matches).
func (v *View) Includes(target value.Value, fromIndex int) (bool, error) {
	length := v.Length()
	if fromIndex < 0 {
		fromIndex += length
		if fromIndex < 0 {
			fromIndex = 0
		}
	}
	for i := fromIndex; i < length; i++ {
		if v.OutOfBounds() {
			return false, jserror.New(jserror.TypeError, "typed array is out of bounds")
		}
		got, err := v.Get(i)
		if err != nil {
			return false, err
		}
		if value.SameValueZero(got, target) {
			return true, nil
		}
	}
	return false, nil
}

// LastIndexOf scans backward from fromIndex (or the end).
func (v *View) LastIndexOf(target value.Value, fromIndex int) (int, error) {
	length := v.Length()
	if fromIndex < 0 {
		fromIndex += length
	}
	if fromIndex >= length {
		fromIndex = length - 1
	}
	for i := fromIndex; i >= 0; i-- {
		if v.OutOfBounds() {
			return -1, jserror.New(jserror.TypeError, "typed array is out of bounds")
		}
		got, err := v.Get(i)
		if err != nil {
			return -1, err
		}
		if value.StrictEquals(got, target) {
			return i, nil
		}
	}
	return -1, nil
}
