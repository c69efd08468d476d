// Package math provides the 2D vector type used for screen-space movement.
package math

import "math"

// Vec2 is a 2D vector in screen coordinates (Y grows downwards).
type Vec2 struct {
	X, Y float32
}

// V2 is shorthand for Vec2{x, y}.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector.
// The zero vector has no direction and normalizes to itself; callers that
// care must check Length first.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Within reports whether both components of v are within limit of zero.
// It is a box test, not a radius test.
func (v Vec2) Within(limit float32) bool {
	return abs(v.X) <= limit && abs(v.Y) <= limit
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
