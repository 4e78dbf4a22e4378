// Package lighting provides the fixed directional light used to shade icon
// faces.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/mcassets/pkg/math"
)

// Icon light defaults.
const (
	// DefaultStrength is the shade alpha of a face pointing away from the light.
	DefaultStrength = 0.35
)

// DefaultDirection is the view-space light direction, up and slightly toward
// the viewer from the left.
var DefaultDirection = math.Vec3{X: -0.4, Y: 1.0, Z: 0.6}.Normalize()

// Sun is a directional light that darkens faces turned away from it.
type Sun struct {
	Direction math.Vec3 // Unit vector pointing towards the light
	Strength  float64
}

// Default returns the icon light.
func Default() Sun {
	return Sun{Direction: DefaultDirection, Strength: DefaultStrength}
}

// FromAngles builds a light from longitude (rotation around Y, degrees) and
// latitude (elevation above the horizon, degrees).
func FromAngles(longitude, latitude, strength float64) Sun {
	lon := longitude * gomath.Pi / 180.0
	lat := latitude * gomath.Pi / 180.0

	// Spherical to Cartesian
	dir := math.Vec3{
		X: gomath.Cos(lat) * gomath.Sin(lon),
		Y: gomath.Sin(lat),
		Z: gomath.Cos(lat) * gomath.Cos(lon),
	}
	return Sun{Direction: dir.Normalize(), Strength: strength}
}

// ShadeAlpha returns the black overlay alpha for a unit face normal:
// clamp(1 - n·l, 0, 1) scaled by the strength.
func (s Sun) ShadeAlpha(normal math.Vec3) float64 {
	a := 1 - normal.Dot(s.Direction)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return a * s.Strength
}
