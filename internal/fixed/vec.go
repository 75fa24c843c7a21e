package fixed

// Vec is a 2D vector in Q16.16 coordinates. Steering math works on
// normalized difference vectors so no trigonometric approximation is
// needed anywhere in the hashed state.
type Vec struct {
	X Value
	Y Value
}

// V builds a vector from integer world coordinates.
func V(x, y int) Vec {
	return Vec{X: FromInt(x), Y: FromInt(y)}
}

// Add returns a + b.
func (a Vec) Add(b Vec) Vec {
	return Vec{X: a.X + b.X, Y: a.Y + b.Y}
}

// Sub returns a - b.
func (a Vec) Sub(b Vec) Vec {
	return Vec{X: a.X - b.X, Y: a.Y - b.Y}
}

// Scale multiplies both components by s.
func (a Vec) Scale(s Value) Vec {
	return Vec{X: Mul(a.X, s), Y: Mul(a.Y, s)}
}

// LengthSq returns the squared length. Cheaper than Length; distance
// comparisons should use it to avoid the Sqrt.
func (a Vec) LengthSq() Value {
	return Mul(a.X, a.X) + Mul(a.Y, a.Y)
}

// Length returns the vector length via fixed-point Sqrt.
func (a Vec) Length() Value {
	return Sqrt(a.LengthSq())
}

// DistSq returns the squared distance between a and b.
func (a Vec) DistSq(b Vec) Value {
	return a.Sub(b).LengthSq()
}

// Normalized returns a unit-length vector pointing the same way, or
// the zero vector when a has no length.
func (a Vec) Normalized() Vec {
	l := a.Length()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: Div(a.X, l), Y: Div(a.Y, l)}
}

// StepToward moves from a toward b by at most dist, stopping exactly
// on b when closer than dist.
func (a Vec) StepToward(b Vec, dist Value) Vec {
	d := b.Sub(a)
	if d.LengthSq() <= Mul(dist, dist) {
		return b
	}
	return a.Add(d.Normalized().Scale(dist))
}
