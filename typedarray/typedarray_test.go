package typedarray_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/typedarray"
	"github.com/go-ecma/engine/value"
)

// TestScenario4LengthTracking implements spec.md §8 scenario 4 (the
// length-tracking constructor form): growing a resizable buffer grows a
// length-tracking view's Length() for free.
func TestScenario4LengthTracking(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewResizableArrayBuffer(4, 8)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, -1)
	require.NoError(t, err)

	require.NoError(t, v.Set(0, value.Number(9)))
	require.NoError(t, buf.Resize(8))

	assert.Equal(t, 8, v.Length())
	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, value.Number(9), got)
}

// TestScenario4FixedLength: a fixed-length view does not track a resize.
func TestScenario4FixedLength(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewResizableArrayBuffer(4, 8)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 4)
	require.NoError(t, err)

	require.NoError(t, v.Set(0, value.Number(9)))
	require.NoError(t, buf.Resize(8))

	assert.Equal(t, 4, v.Length())
}

func TestDetachedAccessThrows(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U32, 1)
	require.NoError(t, err)

	buf.Detach()

	_, err = v.Get(0)
	require.Error(t, err)
	err = v.Set(0, value.Number(1))
	require.Error(t, err)
}

func TestShrinkMakesFixedViewOutOfBounds(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewResizableArrayBuffer(8, 8)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 8)
	require.NoError(t, err)

	require.NoError(t, buf.Resize(2))
	assert.True(t, v.OutOfBounds())
	_, err = v.Get(5)
	require.Error(t, err)
}

func TestBigInt64RejectsNumber(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(8)
	v, err := typedarray.NewView(buf, 0, typedarray.BigInt64, 1)
	require.NoError(t, err)

	err = v.Set(0, value.Number(1))
	require.Error(t, err)

	require.NoError(t, v.Set(0, value.BigIntValue(big.NewInt(-1))))
	got, err := v.Get(0)
	require.NoError(t, err)
	require.True(t, got.IsBigInt())
	// -1 masked to 64-bit two's complement round-trips as -1.
	assert.Equal(t, int64(-1), got.AsBigInt().Int64())
}

func TestUint8ClampedRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U8Clamped, 4)
	require.NoError(t, err)

	cases := []struct {
		in   float64
		want float64
	}{
		{-5, 0},
		{260, 255},
		{127.5, 128}, // round half to even: 128 is even
		{128.5, 128}, // round half to even: 128 is even
	}
	for i, c := range cases {
		require.NoError(t, v.Set(i%4, value.Number(c.in)))
	}
	for i, c := range cases {
		got, err := v.Get(i % 4)
		require.NoError(t, err)
		assert.Equal(t, c.want, got.AsNumber())
	}
}

func TestLittleEndianMultiByte(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U32, 1)
	require.NoError(t, err)
	require.NoError(t, v.Set(0, value.Number(1)))
	assert.Equal(t, byte(1), buf.Bytes()[0])
	assert.Equal(t, byte(0), buf.Bytes()[3])
}

func TestArrayBufferSliceNormalizesNegative(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(10)
	for i := range buf.Bytes() {
		buf.Bytes()[i] = byte(i)
	}
	sliced, err := buf.Slice(-5, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, sliced.ByteLength())
	assert.Equal(t, byte(5), sliced.Bytes()[0])
}

func TestSubarraySharesBuffer(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 4)
	require.NoError(t, err)

	sub, err := v.Subarray(1, 3)
	require.NoError(t, err)
	require.NoError(t, sub.Set(0, value.Number(42)))

	got, err := v.Get(1)
	require.NoError(t, err)
	assert.Equal(t, value.Number(42), got)
	assert.Same(t, buf, sub.Buffer())
}

func TestSliceCopiesBuffer(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 4)
	require.NoError(t, err)
	require.NoError(t, v.Set(0, value.Number(1)))

	sliced, err := v.Slice(0, 2)
	require.NoError(t, err)
	require.NoError(t, sliced.Set(0, value.Number(99)))

	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got, "slice must not alias the source buffer")
}

func TestIndexOfIncludesLastIndexOf(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 4)
	require.NoError(t, err)
	for i, n := range []float64{1, 2, 1, 3} {
		require.NoError(t, v.Set(i, value.Number(n)))
	}

	idx, err := v.IndexOf(value.Number(1), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	last, err := v.LastIndexOf(value.Number(1), -1)
	require.NoError(t, err)
	assert.Equal(t, 2, last)

	has, err := v.Includes(value.Number(3), 0)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDataViewEndianSelection(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	dv, err := typedarray.NewDataView(buf, 0, -1)
	require.NoError(t, err)

	require.NoError(t, dv.SetUint32(0, 0x01020304, false)) // big-endian
	le, err := dv.GetUint32(0, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), le)

	be, err := dv.GetUint32(0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), be)
}

func TestFloat32RoundTrip(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(4)
	v, err := typedarray.NewView(buf, 0, typedarray.F32, 1)
	require.NoError(t, err)
	require.NoError(t, v.Set(0, value.Number(1.5)))
	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.AsNumber())
}

func TestNonAlignedOffsetRejected(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(8)
	_, err := typedarray.NewView(buf, 1, typedarray.U32, 1)
	require.Error(t, err)
}

func TestNaNRoundsToZeroForIntegerKinds(t *testing.T) {
	t.Parallel()

	buf := typedarray.NewArrayBuffer(1)
	v, err := typedarray.NewView(buf, 0, typedarray.U8, 1)
	require.NoError(t, err)
	require.NoError(t, v.Set(0, value.Number(math.NaN())))
	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, value.Number(0), got)
}
