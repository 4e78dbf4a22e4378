// Package math provides the small vector and matrix types used by the mesh
// builder and the software renderer.
package math

// Vec2 is a 2D vector (screen space).
type Vec2 struct {
	X, Y float64
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}
