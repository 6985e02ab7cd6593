package token

import (
	"fmt"
	"strconv"
)

// valueTag discriminates the payload of a Value.
type valueTag uint8

const (
	noValue valueTag = iota
	intValue
	floatValue
)

// Value is the numeric payload of a NUMBER token: either an int64 or a
// float64, never both. Reading the inactive variant reports false instead of
// reinterpreting the stored bits.
type Value struct {
	tag valueTag
	i   int64
	f   float64
}

// IntValue returns a Value holding an integer.
func IntValue(v int64) Value {
	return Value{tag: intValue, i: v}
}

// FloatValue returns a Value holding a floating-point number.
func FloatValue(v float64) Value {
	return Value{tag: floatValue, f: v}
}

// IsZero reports whether the value carries no payload.
func (v Value) IsZero() bool {
	return v.tag == noValue
}

// IsInt reports whether the value holds an integer.
func (v Value) IsInt() bool { return v.tag == intValue }

// IsFloat reports whether the value holds a float.
func (v Value) IsFloat() bool { return v.tag == floatValue }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) {
	if v.tag != intValue {
		return 0, false
	}
	return v.i, true
}

// Float returns the float payload.
func (v Value) Float() (float64, bool) {
	if v.tag != floatValue {
		return 0, false
	}
	return v.f, true
}

// IntOr returns the integer payload, or def if the value is not an integer.
func (v Value) IntOr(def int64) int64 {
	if i, ok := v.Int(); ok {
		return i
	}
	return def
}

// FloatOr returns the float payload, or def if the value is not a float.
func (v Value) FloatOr(def float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return def
}

// MustInt returns the integer payload and panics on any other variant.
func (v Value) MustInt() int64 {
	i, ok := v.Int()
	if !ok {
		panic(fmt.Sprintf("token: MustInt on %s value", v.kindName()))
	}
	return i
}

// MustFloat returns the float payload and panics on any other variant.
func (v Value) MustFloat() float64 {
	f, ok := v.Float()
	if !ok {
		panic(fmt.Sprintf("token: MustFloat on %s value", v.kindName()))
	}
	return f
}

// Number returns the payload widened to float64. The second result is false
// for the empty value.
func (v Value) Number() (float64, bool) {
	switch v.tag {
	case intValue:
		return float64(v.i), true
	case floatValue:
		return v.f, true
	}
	return 0, false
}

func (v Value) kindName() string {
	switch v.tag {
	case intValue:
		return "int"
	case floatValue:
		return "float"
	}
	return "empty"
}

// String formats the payload in its shortest round-trippable form.
func (v Value) String() string {
	switch v.tag {
	case intValue:
		return strconv.FormatInt(v.i, 10)
	case floatValue:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return ""
}
