// Package fixed implements Q16.16 fixed-point arithmetic.
//
// Every quantity that feeds a checkpoint hash (positions, HP, damage,
// timers, modifier math) is stored as a Value so that two engines on
// different hosts compute bit-identical results. All operations use
// 64-bit intermediates and truncate at one standardized moment.
package fixed

import "math"

// Value is a Q16.16 fixed-point number: 16 integer bits, 16 fractional.
type Value int32

const (
	// One is the fixed-point representation of 1.0 (65536).
	One Value = 1 << 16

	// Half is the fixed-point representation of 0.5.
	Half Value = 1 << 15

	// Max and Min are the saturation bounds for division by zero.
	Max Value = math.MaxInt32
	Min Value = math.MinInt32

	shift = 16
)

// FromInt converts an integer to fixed-point.
func FromInt(i int) Value {
	return Value(i) << shift
}

// FromFloat converts a float to fixed-point. It exists for data-load
// time only; runtime simulation math must never round-trip through
// floating point.
func FromFloat(f float64) Value {
	return Value(f * float64(One))
}

// Int truncates the value to its integer part.
func (v Value) Int() int {
	return int(v >> shift)
}

// Float converts to floating point for the rendering boundary. A value
// converted for display must not re-enter hashed computation.
func (v Value) Float() float64 {
	return float64(v) / float64(One)
}

// Mul multiplies two fixed-point values: (a * b) >> 16 with a 64-bit
// intermediate to avoid overflow.
func Mul(a, b Value) Value {
	return Value((int64(a) * int64(b)) >> shift)
}

// Div divides two fixed-point values: (a << 16) / b with a 64-bit
// intermediate. Division by zero saturates to Max for a >= 0 and Min
// for a < 0 rather than faulting, so both engines reach the same state
// on malformed data.
func Div(a, b Value) Value {
	if b == 0 {
		if a >= 0 {
			return Max
		}
		return Min
	}
	return Value((int64(a) << shift) / int64(b))
}

// MulDiv computes a*b/c in one 64-bit expression, avoiding the
// intermediate truncation of Mul followed by Div.
func MulDiv(a, b, c Value) Value {
	if c == 0 {
		if (a >= 0) == (b >= 0) {
			return Max
		}
		return Min
	}
	return Value(int64(a) * int64(b) / int64(c))
}

// Sqrt computes the square root of a fixed-point value using integer
// Newton iteration. Non-positive input yields zero. The intermediate
// root of the raw integer is shifted left by 8 (sqrt of 2^16) to stay
// in Q16.16.
func Sqrt(v Value) Value {
	if v <= 0 {
		return 0
	}
	n := int64(v)
	x := n
	y := (x + 1) >> 1
	for y < x {
		x = y
		y = (x + n/x) >> 1
	}
	return Value(x << 8)
}

// Abs returns the absolute value.
func Abs(v Value) Value {
	if v < 0 {
		return -v
	}
	return v
}

// MinOf returns the smaller of a and b.
func MinOf(a, b Value) Value {
	if a < b {
		return a
	}
	return b
}

// MaxOf returns the larger of a and b.
func MaxOf(a, b Value) Value {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi Value) Value {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates from a to b by t (t in [0, One]).
func Lerp(a, b, t Value) Value {
	return a + Mul(b-a, t)
}
