package mesh

import (
	gomath "math"
	"strings"

	"github.com/Faultbox/mcassets/internal/cache"
	"github.com/Faultbox/mcassets/internal/model"
	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/math"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// DefaultCapacity is the mesh cache size used when none is given.
const DefaultCapacity = 1024

// Build creates quads for every declared face of every element. textures is
// a flattened texture map used to resolve "#key" face references.
func Build(elements []formats.Element, textures map[string]resource.Location) *Mesh {
	m := &Mesh{}

	for i := range elements {
		el := &elements[i]
		from, to := normalizeBox(el.From, el.To)
		rotate := elementRotation(el.Rotation)
		shade := el.Shade == nil || *el.Shade

		for _, dir := range formats.Directions {
			f, ok := el.Faces[dir]
			if !ok {
				continue
			}
			face := Face{
				Direction: dir,
				Vertices:  quad(dir, from, to),
				UV:        f.UV,
				Shade:     shade,
			}
			face.Texture, face.Textured = textureOf(f.Texture, textures)
			if rotate != nil {
				for v := range face.Vertices {
					face.Vertices[v] = rotate(face.Vertices[v])
				}
			}
			m.Faces = append(m.Faces, face)
		}
	}
	return m
}

// toUnit maps a 0..16 coordinate onto the centred unit cube.
func toUnit(v float64) float64 {
	return v/16 - 0.5
}

// normalizeBox converts from/to to unit space, swapping inverted bounds.
func normalizeBox(from, to [3]float64) (math.Vec3, math.Vec3) {
	lo := math.Vec3{X: toUnit(from[0]), Y: toUnit(from[1]), Z: toUnit(from[2])}
	hi := math.Vec3{X: toUnit(to[0]), Y: toUnit(to[1]), Z: toUnit(to[2])}
	if lo.X > hi.X {
		lo.X, hi.X = hi.X, lo.X
	}
	if lo.Y > hi.Y {
		lo.Y, hi.Y = hi.Y, lo.Y
	}
	if lo.Z > hi.Z {
		lo.Z, hi.Z = hi.Z, lo.Z
	}
	return lo, hi
}

// quad returns the four vertices of a face in its fixed winding.
func quad(dir string, a, b math.Vec3) [4]math.Vec3 {
	x1, y1, z1 := a.X, a.Y, a.Z
	x2, y2, z2 := b.X, b.Y, b.Z
	v := func(x, y, z float64) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

	switch dir {
	case formats.North:
		return [4]math.Vec3{v(x2, y2, z1), v(x1, y2, z1), v(x1, y1, z1), v(x2, y1, z1)}
	case formats.South:
		return [4]math.Vec3{v(x1, y2, z2), v(x2, y2, z2), v(x2, y1, z2), v(x1, y1, z2)}
	case formats.West:
		return [4]math.Vec3{v(x1, y2, z1), v(x1, y2, z2), v(x1, y1, z2), v(x1, y1, z1)}
	case formats.East:
		return [4]math.Vec3{v(x2, y2, z2), v(x2, y2, z1), v(x2, y1, z1), v(x2, y1, z2)}
	case formats.Up:
		return [4]math.Vec3{v(x1, y2, z1), v(x2, y2, z1), v(x2, y2, z2), v(x1, y2, z2)}
	default: // down
		return [4]math.Vec3{v(x1, y1, z2), v(x2, y1, z2), v(x2, y1, z1), v(x1, y1, z1)}
	}
}

// elementRotation returns a vertex transform for an element rotation, or nil
// when the element is not rotated.
func elementRotation(r *formats.Rotation) func(math.Vec3) math.Vec3 {
	if r == nil || r.Angle == 0 {
		return nil
	}

	angle := math.Deg2Rad(r.Angle)
	origin := math.Vec3{X: toUnit(r.Origin[0]), Y: toUnit(r.Origin[1]), Z: toUnit(r.Origin[2])}

	var rot math.Mat3
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	stretch := 1.0
	if r.Rescale {
		if c := gomath.Cos(angle); gomath.Abs(c) > 1e-6 {
			stretch = 1 / gomath.Abs(c)
		}
	}

	switch strings.ToLower(r.Axis) {
	case "x":
		rot = math.RotX(angle)
		scale.Y, scale.Z = stretch, stretch
	case "y":
		rot = math.RotY(angle)
		scale.X, scale.Z = stretch, stretch
	case "z":
		rot = math.RotZ(angle)
		scale.X, scale.Y = stretch, stretch
	default:
		return nil
	}

	return func(p math.Vec3) math.Vec3 {
		return rot.Apply(p.Sub(origin)).Mul(scale).Add(origin)
	}
}

// textureOf resolves a face texture reference against the model textures.
func textureOf(ref string, textures map[string]resource.Location) (resource.Location, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return resource.Location{}, false
	}
	if strings.HasPrefix(ref, "#") {
		loc, ok := textures[strings.TrimPrefix(ref, "#")]
		return loc, ok
	}
	return resource.Parse(ref), true
}

// Builder builds meshes for resolved models and caches them by model id.
type Builder struct {
	cache *cache.LRU[resource.Location, *Mesh]
}

// NewBuilder creates a builder with a bounded mesh cache.
func NewBuilder(capacity int) *Builder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Builder{cache: cache.NewLRU[resource.Location, *Mesh](capacity)}
}

// ForModel returns the mesh of a resolved model.
func (b *Builder) ForModel(res *model.Resolved) *Mesh {
	m, _ := b.cache.GetOrCompute(res.ID, func() (*Mesh, bool) {
		return Build(res.Elements, res.Textures), true
	})
	return m
}

// Stats returns mesh cache statistics.
func (b *Builder) Stats() cache.Stats {
	return b.cache.Stats()
}

// Clear drops all cached meshes.
func (b *Builder) Clear() {
	b.cache.Clear()
}
