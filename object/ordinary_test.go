package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

func TestDefineThenGetRoundTrip(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)
	ref := a.Alloc(o)

	ok, err := o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(42), true, true, true))
	require.NoError(t, err)
	require.True(t, ok)

	v, found, err := o.TryGet(a, object.StringKey("x"), value.Object(ref))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value.Number(42), v)

	d, ok := o.GetOwnDescriptor(object.StringKey("x"))
	require.True(t, ok)
	assert.True(t, d.HasValue && d.HasWritable && d.HasEnumerable && d.HasConfigurable)
	assert.Equal(t, value.Number(42), d.Value)
}

func TestPrototypeWalk(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	proto := object.NewOrdinary(value.Null)
	protoRef := a.Alloc(proto)
	_, err := proto.Define(a, object.StringKey("inherited"), object.DataDescriptor(value.String("from-proto"), true, true, true))
	require.NoError(t, err)

	child := object.NewOrdinary(value.Object(protoRef))
	childRef := a.Alloc(child)

	v, found, err := child.TryGet(a, object.StringKey("inherited"), value.Object(childRef))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value.String("from-proto"), v)

	_, found, err = child.TryGet(a, object.StringKey("nope"), value.Object(childRef))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetPrototypeRejectsCycle(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o1 := object.NewOrdinary(value.Null)
	ref1 := a.Alloc(o1)
	o2 := object.NewOrdinary(value.Object(ref1))
	ref2 := a.Alloc(o2)

	// o2's prototype is already o1; pointing o1 at o2 would close a cycle.
	assert.False(t, o1.SetPrototype(a, value.Object(ref2)))
	assert.True(t, o1.Prototype().IsNull())
}

func TestNonConfigurableRedefineRejected(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)

	ok, err := o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(1), false, true, false))
	require.NoError(t, err)
	require.True(t, ok)

	// Attempting to widen configurability on a non-configurable prop fails.
	ok, err = o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(2), true, true, true))
	require.NoError(t, err)
	assert.False(t, ok)

	// Value is unchanged.
	d, _ := o.GetOwnDescriptor(object.StringKey("x"))
	assert.Equal(t, value.Number(1), d.Value)
}

func TestDefineOnNonExtensibleRejectsNewSlot(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)
	o.PreventExtensions()

	ok, err := o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(1), true, true, true))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteNonConfigurable(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)
	_, err := o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(1), true, true, false))
	require.NoError(t, err)

	assert.False(t, o.Delete(object.StringKey("x")))
	assert.True(t, o.Delete(object.StringKey("nonexistent")))
}

func TestOwnKeysOrdering(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)

	sym := value.NewSymbol("s")
	for _, k := range []object.Key{
		object.StringKey("b"),
		object.SymbolKey(sym),
		object.StringKey("2"),
		object.StringKey("a"),
		object.StringKey("0"),
		object.StringKey("1"),
	} {
		_, err := o.Define(a, k, object.DataDescriptor(value.Undefined, true, true, true))
		require.NoError(t, err)
	}

	keys := o.OwnKeys()
	require.Len(t, keys, 6)
	assert.Equal(t, "0", keys[0].String())
	assert.Equal(t, "1", keys[1].String())
	assert.Equal(t, "2", keys[2].String())
	assert.Equal(t, "b", keys[3].String())
	assert.Equal(t, "a", keys[4].String())
	assert.True(t, keys[5].IsSymbol())
}

func TestFreezeIdempotent(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	o := object.NewOrdinary(value.Null)
	_, err := o.Define(a, object.StringKey("x"), object.DataDescriptor(value.Number(1), true, true, true))
	require.NoError(t, err)

	o.Freeze()
	assert.True(t, o.IsFrozen())
	o.Freeze() // idempotent
	assert.True(t, o.IsFrozen())

	d, _ := o.GetOwnDescriptor(object.StringKey("x"))
	assert.False(t, d.Writable)
	assert.False(t, d.Configurable)
	assert.False(t, o.IsExtensible())
}

func TestFreezeDeep(t *testing.T) {
	t.Parallel()

	a := object.NewArena()
	nested := object.NewOrdinary(value.Null)
	nestedRef := a.Alloc(nested)
	_, err := nested.Define(a, object.StringKey("propkey"), object.DataDescriptor(value.String("value1"), true, true, true))
	require.NoError(t, err)

	outer := object.NewOrdinary(value.Null)
	_, err = outer.Define(a, object.StringKey("nested"), object.DataDescriptor(value.Object(nestedRef), true, true, true))
	require.NoError(t, err)

	object.FreezeDeep(a, value.Object(a.Alloc(outer)))

	assert.True(t, outer.IsFrozen())
	assert.True(t, nested.IsFrozen())
}

func TestPrivateFieldsHiddenFromEnumeration(t *testing.T) {
	t.Parallel()

	o := object.NewOrdinary(value.Null)
	o.SetPrivate("#x", value.Number(1))

	v, ok := o.GetPrivate("#x")
	require.True(t, ok)
	assert.Equal(t, value.Number(1), v)
	assert.Empty(t, o.OwnKeys())
}

func TestBrandCheck(t *testing.T) {
	t.Parallel()

	o := object.NewOrdinary(value.Null)
	assert.False(t, o.HasBrand("MyClass"))
	o.AddBrand("MyClass")
	assert.True(t, o.HasBrand("MyClass"))
}
