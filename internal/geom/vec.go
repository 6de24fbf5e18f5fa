package geom

import "math"

// Vec2 is a point or displacement in layout space.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Mul multiplies component-wise.
func (a Vec2) Mul(b Vec2) Vec2 {
	return Vec2{a.X * b.X, a.Y * b.Y}
}

func (a Vec2) Scale(f float64) Vec2 {
	return Vec2{a.X * f, a.Y * f}
}

// Angle returns the angle of a measured from the positive X axis.
func (a Vec2) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

// MinElem returns the smaller component.
func (a Vec2) MinElem() float64 {
	return math.Min(a.X, a.Y)
}

// Rotate turns v by angle radians. Positive angles rotate from +Y toward +X,
// which in a Y-down screen frame is counter-clockwise.
func Rotate(v Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{
		X: cos*v.X + sin*v.Y,
		Y: cos*v.Y - sin*v.X,
	}
}
