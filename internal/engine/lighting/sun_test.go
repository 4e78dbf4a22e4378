package lighting

import (
	"testing"

	"github.com/Faultbox/mcassets/pkg/math"
)

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestShadeAlpha(t *testing.T) {
	sun := Default()

	tests := []struct {
		name   string
		normal math.Vec3
		want   float64
	}{
		{"facing the light", DefaultDirection, 0},
		{"facing away", DefaultDirection.Scale(-1), DefaultStrength},
		{"perpendicular", math.Vec3{X: 0.6, Y: 0, Z: 0.4}.Normalize(), DefaultStrength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sun.ShadeAlpha(tt.normal); !near(got, tt.want) {
				t.Errorf("ShadeAlpha(%v) = %f, want %f", tt.normal, got, tt.want)
			}
		})
	}
}

func TestFromAngles(t *testing.T) {
	overhead := FromAngles(0, 90, 1)
	if !near(overhead.Direction.Y, 1) {
		t.Errorf("latitude 90 should point straight up, got %v", overhead.Direction)
	}

	front := FromAngles(0, 0, 1)
	if !near(front.Direction.Z, 1) {
		t.Errorf("longitude 0 latitude 0 should point along +Z, got %v", front.Direction)
	}

	if !near(front.Direction.Length(), 1) {
		t.Errorf("direction should be normalized, got length %f", front.Direction.Length())
	}
}
