package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueVariants(t *testing.T) {
	iv := IntValue(42)
	i, ok := iv.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)
	_, ok = iv.Float()
	assert.False(t, ok, "reading the float side of an int must fail")

	fv := FloatValue(1.5)
	f, ok := fv.Float()
	assert.True(t, ok)
	assert.InDelta(t, 1.5, f, 0)
	_, ok = fv.Int()
	assert.False(t, ok)

	var zero Value
	assert.True(t, zero.IsZero())
	_, ok = zero.Number()
	assert.False(t, ok)
}

func TestValueDefaults(t *testing.T) {
	assert.Equal(t, int64(7), FloatValue(3).IntOr(7))
	assert.InDelta(t, 2.5, IntValue(3).FloatOr(2.5), 0)
	assert.Equal(t, int64(math.MinInt64), IntValue(math.MinInt64).IntOr(0))
}

func TestValueMustPanics(t *testing.T) {
	assert.Panics(t, func() { FloatValue(1).MustInt() })
	assert.Panics(t, func() { IntValue(1).MustFloat() })
	assert.NotPanics(t, func() { IntValue(1).MustInt() })
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "12", IntValue(12).String())
	assert.Equal(t, "0.5", FloatValue(0.5).String())
	assert.Equal(t, "9.223372036854776e+18", FloatValue(9223372036854775808).String())
	assert.Equal(t, "", Value{}.String())
}

func TestSpan(t *testing.T) {
	a := NewSpan(3, 7)
	b := NewSpan(5, 12)
	assert.Equal(t, Span{Start: 3, End: 12}, a.Cover(b))
	assert.Equal(t, Span{Start: 3, End: 12}, b.Cover(a))
	assert.Equal(t, uint64(4), a.Len())
	assert.True(t, At(9).Empty())
	assert.Equal(t, "3:7", a.String())
	assert.Panics(t, func() { NewSpan(2, 1) })

	src := "SELECT *"
	assert.Equal(t, "ELEC", NewSpan(1, 5).Text(src))
	assert.Equal(t, "*", NewSpan(7, 50).Text(src))
}

func TestResolve(t *testing.T) {
	src := "SELECT *\nFROM c\n  WHERE é = 1"
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, Resolve(src, 0))
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 9}, Resolve(src, 9))

	// columns count runes, not bytes
	pos := Resolve(src, uint64(len(src)))
	assert.Equal(t, 3, pos.Line)
	assert.Equal(t, 14, pos.Column)
	assert.Equal(t, "3:14", pos.String())
}
