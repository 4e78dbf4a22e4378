// Package mesh builds oriented, textured quads from the cuboid elements of a
// resolved block model.
package mesh

import (
	"github.com/Faultbox/mcassets/pkg/math"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// Face is one quad in object space: centred on the origin, unit cube scale,
// element rotation already applied. Vertices are ordered top-left,
// top-right, bottom-right, bottom-left as seen from outside.
type Face struct {
	Direction string
	Vertices  [4]math.Vec3
	Texture   resource.Location
	Textured  bool        // Texture resolved to a literal id
	UV        *[4]float64 // Nil means the full texture
	Shade     bool
}

// Normal returns the outward unit normal, (v2-v0) x (v1-v0).
func (f *Face) Normal() math.Vec3 {
	return Normal(f.Vertices)
}

// Normal returns the outward unit normal of a quad with the face winding.
func Normal(v [4]math.Vec3) math.Vec3 {
	return v[2].Sub(v[0]).Cross(v[1].Sub(v[0])).Normalize()
}

// Center returns the average of the four vertices.
func (f *Face) Center() math.Vec3 {
	var c math.Vec3
	for _, v := range f.Vertices {
		c = c.Add(v)
	}
	return c.Scale(0.25)
}

// Mesh holds the faces of one model.
type Mesh struct {
	Faces []Face
}
