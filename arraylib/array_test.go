package arraylib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/arraylib"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

// TestScenario1 implements spec.md §8 scenario 1:
// var a=[]; a.length=3; a.push(1); a.length -> 4; a[0] -> undefined.
func TestScenario1(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	require.NoError(t, a.SetLength(3))
	a.Push(value.Number(1))

	assert.Equal(t, uint32(4), a.Length())
	assert.Equal(t, value.Undefined, a.Get(0))
	assert.False(t, a.Has(0))
	assert.True(t, a.Has(3))
	assert.Equal(t, value.Number(1), a.Get(3))
}

func TestSetIndexGrowsLength(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.SetIndex(5, value.Number(9))
	assert.Equal(t, uint32(6), a.Length())
	assert.False(t, a.Has(2))
	assert.Equal(t, value.Undefined, a.Get(2))
}

func TestSetLengthRejectsNonInteger(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	err := a.SetLength(1.5)
	require.Error(t, err)
}

func TestSetLengthRejectsOverflow(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	err := a.SetLength(4294967296) // 2^32
	require.Error(t, err)
}

func TestSetLengthTruncates(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.Push(value.Number(1), value.Number(2), value.Number(3))
	require.NoError(t, a.SetLength(1))
	assert.Equal(t, uint32(1), a.Length())
	assert.Equal(t, value.Number(1), a.Get(0))
	assert.False(t, a.Has(1))
}

func TestPushPopShiftUnshift(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.Push(value.Number(1), value.Number(2))
	assert.Equal(t, uint32(2), a.Length())

	popped := a.Pop()
	assert.Equal(t, value.Number(2), popped)
	assert.Equal(t, uint32(1), a.Length())

	a.Unshift(value.Number(0))
	assert.Equal(t, value.Number(0), a.Get(0))
	assert.Equal(t, value.Number(1), a.Get(1))

	shifted := a.Shift()
	assert.Equal(t, value.Number(0), shifted)
	assert.Equal(t, uint32(1), a.Length())
}

func TestReversePreservesHoles(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.SetIndex(0, value.Number(1))
	a.SetIndex(2, value.Number(3)) // index 1 is a hole
	a.Reverse()

	assert.Equal(t, value.Number(3), a.Get(0))
	assert.False(t, a.Has(1))
	assert.Equal(t, value.Number(1), a.Get(2))
}

func TestSplice(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.Push(value.Number(1), value.Number(2), value.Number(3), value.Number(4))

	removed := a.Splice(1, 2, value.String("x"))
	require.Len(t, removed, 2)
	assert.Equal(t, value.Number(2), removed[0])
	assert.Equal(t, value.Number(3), removed[1])

	assert.Equal(t, uint32(3), a.Length())
	assert.Equal(t, value.Number(1), a.Get(0))
	assert.Equal(t, value.String("x"), a.Get(1))
	assert.Equal(t, value.Number(4), a.Get(2))
}

func TestIteratorTreatsHolesAsUndefined(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	a.SetIndex(0, value.Number(1))
	a.SetIndex(2, value.Number(3))

	next := a.Iterator()

	v, done := next()
	assert.False(t, done)
	assert.Equal(t, value.Number(1), v)

	v, done = next()
	assert.False(t, done)
	assert.Equal(t, value.Undefined, v)

	v, done = next()
	assert.False(t, done)
	assert.Equal(t, value.Number(3), v)

	_, done = next()
	assert.True(t, done)
}

func TestLengthDescriptorNotConfigurable(t *testing.T) {
	t.Parallel()

	a := arraylib.New(value.Null)
	assert.False(t, a.Delete(object.StringKey("length")))
}
