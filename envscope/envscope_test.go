package envscope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/envscope"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/value"
)

func TestVarDeclareAndGet(t *testing.T) {
	t.Parallel()

	s := envscope.NewScope(nil)
	s.Declare("x", envscope.KindVar, true, value.Number(1))

	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got)
}

func TestAssignWalksOutward(t *testing.T) {
	t.Parallel()

	outer := envscope.NewScope(nil)
	outer.Declare("x", envscope.KindVar, true, value.Number(1))
	inner := envscope.NewScope(outer)

	require.NoError(t, inner.Assign("x", value.Number(2)))

	got, err := outer.Get("x")
	require.NoError(t, err)
	assert.Equal(t, value.Number(2), got)
}

func TestTDZAccessIsReferenceError(t *testing.T) {
	t.Parallel()

	s := envscope.NewScope(nil)
	s.Declare("x", envscope.KindLet, false, value.Undefined)

	_, err := s.Get("x")
	require.Error(t, err)

	err = s.Assign("x", value.Number(1))
	require.Error(t, err)
}

func TestInitializeBindingClearsTDZ(t *testing.T) {
	t.Parallel()

	s := envscope.NewScope(nil)
	idx := s.Declare("x", envscope.KindLet, false, value.Undefined)
	s.InitializeBinding(idx, value.Number(5))

	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, value.Number(5), got)
}

func TestConstReassignmentIsTypeError(t *testing.T) {
	t.Parallel()

	s := envscope.NewScope(nil)
	s.Declare("x", envscope.KindConst, true, value.Number(1))

	err := s.Assign("x", value.Number(2))
	require.Error(t, err)
}

func TestUnresolvedNameIsReferenceError(t *testing.T) {
	t.Parallel()

	s := envscope.NewScope(nil)
	_, err := s.Get("nope")
	require.Error(t, err)
}

func TestShadowingFindsInnermostBinding(t *testing.T) {
	t.Parallel()

	outer := envscope.NewScope(nil)
	outer.Declare("x", envscope.KindVar, true, value.Number(1))
	inner := envscope.NewScope(outer)
	inner.Declare("x", envscope.KindLet, true, value.Number(2))

	got, err := inner.Get("x")
	require.NoError(t, err)
	assert.Equal(t, value.Number(2), got)

	got, err = outer.Get("x")
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got)
}

func TestMappedArgumentsAliasesParameterWrites(t *testing.T) {
	t.Parallel()

	scope := envscope.NewScope(nil)
	pIdx := scope.Declare("a", envscope.KindParam, true, value.Number(10))

	a := object.NewArena()
	args := envscope.NewMappedArguments(value.Null, scope, []int{pIdx}, nil)
	ref := a.Alloc(args)

	got, ok, err := args.TryGet(a, object.StringKey("0"), value.Object(ref))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value.Number(10), got)

	require.NoError(t, args.Set(a, object.StringKey("0"), value.Number(99), value.Object(ref)))
	assert.Equal(t, value.Number(99), scope.SlotValue(pIdx))

	require.NoError(t, scope.Assign("a", value.Number(7)))
	got, _, err = args.TryGet(a, object.StringKey("0"), value.Object(ref))
	require.NoError(t, err)
	assert.Equal(t, value.Number(7), got)
}

func TestMappedArgumentsUnmapsOnNonWritableRedefine(t *testing.T) {
	t.Parallel()

	scope := envscope.NewScope(nil)
	pIdx := scope.Declare("a", envscope.KindParam, true, value.Number(10))

	a := object.NewArena()
	args := envscope.NewMappedArguments(value.Null, scope, []int{pIdx}, nil)

	ok, err := args.Define(a, object.StringKey("0"), object.DataDescriptor(value.Number(1), false, true, true))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, scope.Assign("a", value.Number(42)))

	got, _, err := args.TryGet(a, object.StringKey("0"), value.Null)
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got, "unmapped index must no longer track the parameter")
}

func TestMappedArgumentsLengthIncludesExtras(t *testing.T) {
	t.Parallel()

	scope := envscope.NewScope(nil)
	pIdx := scope.Declare("a", envscope.KindParam, true, value.Number(1))

	args := envscope.NewMappedArguments(value.Null, scope, []int{pIdx}, []value.Value{value.Number(2), value.Number(3)})
	a := object.NewArena()

	got, ok, err := args.TryGet(a, object.StringKey("length"), value.Null)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value.Number(3), got)

	extra, ok, err := args.TryGet(a, object.StringKey("1"), value.Null)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value.Number(2), extra)
}
