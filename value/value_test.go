package value_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/value"
)

func TestToBoolean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"undefined", value.Undefined, false},
		{"null", value.Null, false},
		{"zero", value.Number(0), false},
		{"negzero", value.Number(math.Copysign(0, -1)), false},
		{"nan", value.Number(math.NaN()), false},
		{"one", value.Number(1), true},
		{"emptystring", value.String(""), false},
		{"string", value.String("a"), true},
		{"zerobigint", value.BigIntValue(big.NewInt(0)), false},
		{"bigint", value.BigIntValue(big.NewInt(1)), true},
		{"false", value.Bool(false), false},
		{"true", value.Bool(true), true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.v.ToBoolean())
		})
	}
}

func TestSameValueZeroNaN(t *testing.T) {
	t.Parallel()

	nan1 := value.Number(math.NaN())
	nan2 := value.Number(math.NaN())
	require.True(t, value.SameValueZero(nan1, nan2), "NaN must be SameValueZero to NaN")
	require.False(t, value.StrictEquals(nan1, nan2), "NaN must not be === to NaN")
}

func TestSameValueZeroSignedZero(t *testing.T) {
	t.Parallel()

	posZero := value.Number(0)
	negZero := value.Number(math.Copysign(0, -1))
	// SameValueZero treats +0 and -0 as equal (unlike SameValue).
	assert.True(t, value.SameValueZero(posZero, negZero))
	assert.True(t, value.StrictEquals(posZero, negZero))
}

func TestSymbolIdentity(t *testing.T) {
	t.Parallel()

	a := value.NewSymbol("x")
	b := value.NewSymbol("x")
	require.NotSame(t, a, b, "distinct Symbol() calls must never be identical")

	va, vb := value.SymbolValue(a), value.SymbolValue(b)
	assert.False(t, value.SameValueZero(va, vb))
	assert.True(t, value.SameValueZero(va, va))
}

func TestSymbolFor(t *testing.T) {
	t.Parallel()

	a := value.SymbolFor("shared")
	b := value.SymbolFor("shared")
	assert.Same(t, a, b)

	key, ok := value.SymbolKeyFor(a)
	require.True(t, ok)
	assert.Equal(t, "shared", key)
}

func TestRefZeroValueInvalid(t *testing.T) {
	t.Parallel()

	var r value.Ref
	assert.False(t, r.Valid())
	assert.True(t, value.NewRef(1).Valid())
}
