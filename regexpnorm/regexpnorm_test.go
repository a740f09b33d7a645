package regexpnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/regexpnorm"
)

// TestScenario6 implements spec.md §8 scenario 6:
// new RegExp("\u{1F600}","u").test("😀") -> true.
func TestScenario6(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`\u{1F600}`, "u")
	require.NoError(t, err)

	ok, err := re.Test("😀")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDuplicateFlagRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile("a", "gg")
	require.Error(t, err)
}

func TestUnknownFlagRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile("a", "z")
	require.Error(t, err)
}

func TestNamedGroupCapture(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`(?<year>\d{4})-(?<month>\d{2})`, "")
	require.NoError(t, err)

	res, err := re.Exec("born 2024-05 today")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "2024-05", res.Match)
	assert.Equal(t, "2024", res.Named["year"])
	assert.Equal(t, "05", res.Named["month"])
}

func TestBackreferenceOutOfRangeRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`(a)\2`, "")
	require.Error(t, err)
}

func TestBackreferenceInRangeAccepted(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`(a)\1`, "")
	require.NoError(t, err)

	ok, err := re.Test("aa")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvalidHexEscapeRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`\xZZ`, "")
	require.Error(t, err)
}

func TestInvalidUnicodeEscapeOutOfRangeRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`\u{110000}`, "u")
	require.Error(t, err)
}

func TestUnicodeEscapeSurrogateRejectedUnderUFlag(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`\u{D800}`, "u")
	require.Error(t, err)
}

func TestBraceEscapeRequiresUFlag(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`\u{41}`, "")
	require.Error(t, err)
}

func TestMalformedQuantifierRangeRejected(t *testing.T) {
	t.Parallel()

	_, err := regexpnorm.Compile(`a{5,2}`, "")
	require.Error(t, err)
}

func TestWellFormedQuantifierAccepted(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`a{2,5}`, "")
	require.NoError(t, err)

	ok, err := re.Test("aaa")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGlobalFlagAdvancesLastIndex(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`\d+`, "g")
	require.NoError(t, err)

	first, err := re.Exec("a1 b22")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "1", first.Match)
	assert.Equal(t, 2, re.LastIndex())

	second, err := re.Exec("a1 b22")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "22", second.Match)

	third, err := re.Exec("a1 b22")
	require.NoError(t, err)
	assert.Nil(t, third)
	assert.Equal(t, 0, re.LastIndex())
}

func TestStickyFlagRequiresExactPosition(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`\d+`, "y")
	require.NoError(t, err)
	re.SetLastIndex(1)

	res, err := re.Exec("a12")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "12", res.Match)
}

func TestStickyFlagFailsWhenNotAtPosition(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`\d+`, "y")
	require.NoError(t, err)
	re.SetLastIndex(0)

	res, err := re.Exec("a12")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestNonGlobalIgnoresLastIndex(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile(`\d+`, "")
	require.NoError(t, err)
	re.SetLastIndex(5)

	res, err := re.Exec("a1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "1", res.Match)
	assert.Equal(t, 5, re.LastIndex(), "non-global exec must not mutate lastIndex")
}

func TestFlagStringCanonicalOrder(t *testing.T) {
	t.Parallel()

	re, err := regexpnorm.Compile("a", "yimg")
	require.NoError(t, err)
	assert.Equal(t, "gimy", re.FlagString())
}
