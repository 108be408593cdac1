package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueStringForm(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "rest", String("rest").String())
	assert.Equal(t, "[a, b]", List([]Value{String("a"), String("b")}).String())
}

func TestValueIsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.True(t, List(nil).IsEmpty())
	assert.True(t, Map(nil).IsEmpty())
	assert.False(t, String("x").IsEmpty())
	assert.False(t, Int(0).IsEmpty())
}

func TestAsNumber(t *testing.T) {
	f, ok := String("3.5").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	_, ok = String("abc").AsNumber()
	assert.False(t, ok)

	f, ok = Int(7).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
}

func TestAsNonNegativeIntToleratesLeadingZeros(t *testing.T) {
	n, ok := String("01").AsNonNegativeInt()
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)

	n, ok = String("007").AsNonNegativeInt()
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = String("-1").AsNonNegativeInt()
	assert.False(t, ok)

	_, ok = String("1.5").AsNonNegativeInt()
	assert.False(t, ok)
}

func TestEqualEntityLeadingZeroInsensitive(t *testing.T) {
	assert.True(t, EqualEntity(String("1"), String("01")))
	assert.True(t, EqualEntity(String("007"), String("7")))
	assert.False(t, EqualEntity(String("01"), String("02")))
}

func TestEqualNullOnlyMatchesNull(t *testing.T) {
	assert.True(t, Equal(Null(), Null()))
	assert.False(t, Equal(Null(), String("")))
	assert.False(t, Equal(String(""), Null()))
}

func TestEqualNumericFallsBackToString(t *testing.T) {
	assert.True(t, Equal(Int(1), String("1")))
	assert.True(t, Equal(String("rest"), String("rest")))
	assert.False(t, Equal(String("rest"), String("nback")))
}

func TestCompareNumericVsLexical(t *testing.T) {
	assert.Equal(t, -1, Compare(Int(2), Int(10)))
	assert.Equal(t, 1, Compare(String("b"), String("a")))
	assert.Equal(t, 0, Compare(Float(1.5), String("1.5")))
}

func TestFromGoAndToGoRoundTrip(t *testing.T) {
	src := map[string]any{
		"RepetitionTime": 2.5,
		"EchoTime":       nil,
		"SliceTiming":    []any{0.0, 0.1, 0.2},
		"nested":         map[string]any{"a": "b"},
	}
	v := FromGo(src)
	assert.Equal(t, KindMap, v.Kind())
	back := v.ToGo().(map[string]any)
	assert.Equal(t, 2.5, back["RepetitionTime"])
	assert.Nil(t, back["EchoTime"])
}

func TestFromGoIntegralFloatBecomesInt(t *testing.T) {
	v := FromGo(3.0)
	assert.Equal(t, KindInt, v.Kind())
	assert.Equal(t, int64(3), v.Int())

	v = FromGo(3.5)
	assert.Equal(t, KindFloat, v.Kind())
}
