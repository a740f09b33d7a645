// Package typedarray implements spec.md §4.3: ArrayBuffer (fixed and
// resizable), TypedArray views (fixed-length and length-tracking), and
// DataView, all sharing byte storage by reference.
package typedarray

import "github.com/go-ecma/engine/jserror"

// ArrayBuffer owns a byte vector shared by reference across every
// TypedArray/DataView view constructed over it (spec.md §5 "Shared
// resources").
type ArrayBuffer struct {
	bytes       []byte
	maxByteLength int // -1 if not resizable
	detached    bool
}

// NewArrayBuffer creates a fixed-length buffer of n zeroed bytes.
func NewArrayBuffer(n int) *ArrayBuffer {
	return &ArrayBuffer{bytes: make([]byte, n), maxByteLength: -1}
}

// NewResizableArrayBuffer creates a resizable buffer starting at n bytes,
// capped at maxByteLength.
func NewResizableArrayBuffer(n, maxByteLength int) *ArrayBuffer {
	return &ArrayBuffer{bytes: make([]byte, n), maxByteLength: maxByteLength}
}

// ByteLength returns the current length in bytes.
func (b *ArrayBuffer) ByteLength() int { return len(b.bytes) }

// Resizable reports whether Resize is ever legal on b.
func (b *ArrayBuffer) Resizable() bool { return b.maxByteLength >= 0 }

// MaxByteLength returns the resizable cap, or -1 if b is fixed-length.
func (b *ArrayBuffer) MaxByteLength() int { return b.maxByteLength }

// Detached reports whether Detach() has been called.
func (b *ArrayBuffer) Detached() bool { return b.detached }

// Bytes exposes the live backing slice; callers must not retain it across
// a Resize/Detach.
func (b *ArrayBuffer) Bytes() []byte { return b.bytes }

// Resize implements spec.md §4.3: "fails when not resizable, n<0, or
// n>max; otherwise reallocates preserving min(old,new) bytes."
func (b *ArrayBuffer) Resize(n int) error {
	if b.detached {
		return jserror.New(jserror.TypeError, "cannot resize a detached ArrayBuffer")
	}
	if !b.Resizable() {
		return jserror.New(jserror.TypeError, "ArrayBuffer is not resizable")
	}
	if n < 0 || n > b.maxByteLength {
		return jserror.New(jserror.RangeError, "invalid ArrayBuffer resize length %d", n)
	}
	grown := make([]byte, n)
	copy(grown, b.bytes)
	b.bytes = grown
	return nil
}

// Detach implements spec.md §4.3: replaces storage with a zero-length
// vector and sets detached=true.
func (b *ArrayBuffer) Detach() {
	b.bytes = nil
	b.detached = true
}

// Slice implements spec.md §4.3: normalizes negative indices and copies a
// new (always fixed-length) buffer.
func (b *ArrayBuffer) Slice(begin, end int) (*ArrayBuffer, error) {
	if b.detached {
		return nil, jserror.New(jserror.TypeError, "cannot slice a detached ArrayBuffer")
	}
	n := len(b.bytes)
	begin = normalizeIndex(begin, n)
	end = normalizeIndex(end, n)
	if end < begin {
		end = begin
	}
	out := NewArrayBuffer(end - begin)
	copy(out.bytes, b.bytes[begin:end])
	return out, nil
}

func normalizeIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
