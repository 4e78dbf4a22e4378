// Package renderer is a software isometric rasterizer for block and item
// icons: display transform, orthographic projection, painter's-algorithm
// depth sort, affine texture mapping and a simple directional shade.
package renderer

import (
	"image"
	"image/color"
	gomath "math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/Faultbox/mcassets/internal/engine/lighting"
	"github.com/Faultbox/mcassets/internal/engine/mesh"
	"github.com/Faultbox/mcassets/internal/engine/texture"
	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/math"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// DefaultDisplay is the inventory transform used when a model declares none.
var DefaultDisplay = formats.Transform{
	Rotation: [3]float64{30, 225, 0},
	Scale:    [3]float64{0.625, 0.625, 0.625},
}

// Rendering constants.
const (
	// DisplayFactor scales unit-cube geometry to this share of the canvas
	// half-size.
	DisplayFactor = 0.85
)

// FallbackColor fills faces whose texture is unavailable.
var FallbackColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}

// TextureSource provides decoded textures.
type TextureSource interface {
	Resolve(loc resource.Location) (*image.NRGBA, bool)
}

// Renderer draws meshes and flat layer stacks.
type Renderer struct {
	textures TextureSource
	light    lighting.Sun
}

// New creates a renderer reading textures from src, shaded by the default
// icon light.
func New(src TextureSource) *Renderer {
	return &Renderer{textures: src, light: lighting.Default()}
}

// WithLight returns a copy of r that shades faces with sun.
func (r *Renderer) WithLight(sun lighting.Sun) *Renderer {
	cp := *r
	cp.light = sun
	return &cp
}

// projected is a face after transform and projection.
type projected struct {
	face   *mesh.Face
	view   [4]math.Vec3 // Transformed, before projection
	screen [4]math.Vec2
	depth  float64
}

// displayMatrix builds scale, then Z, Y and X rotation.
func displayMatrix(t formats.Transform) math.Mat3 {
	rot := math.RotX(math.Deg2Rad(t.Rotation[0])).
		Mul(math.RotY(math.Deg2Rad(t.Rotation[1]))).
		Mul(math.RotZ(math.Deg2Rad(t.Rotation[2])))
	return rot.Mul(math.Diag(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// project transforms and projects the faces of m onto a size×size canvas,
// returning them in draw order (ascending average Z).
func project(m *mesh.Mesh, display formats.Transform, size int) []projected {
	xf := displayMatrix(display)
	half := float64(size) / 2
	factor := DisplayFactor * half

	out := make([]projected, 0, len(m.Faces))
	for i := range m.Faces {
		f := &m.Faces[i]
		p := projected{face: f, depth: xf.Apply(f.Center()).Z * factor}
		for v, vert := range f.Vertices {
			tv := xf.Apply(vert).Scale(factor)
			p.view[v] = tv
			p.screen[v] = math.Vec2{X: half + tv.X, Y: half - tv.Y}
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].depth < out[j].depth })
	return out
}

// RenderMesh renders m with the given display transform (DefaultDisplay when
// nil). It returns the image and the number of faces drawn.
func (r *Renderer) RenderMesh(m *mesh.Mesh, display *formats.Transform, size int) (*image.NRGBA, int) {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	if m == nil || len(m.Faces) == 0 || size <= 0 {
		return canvas, 0
	}
	if display == nil {
		display = &DefaultDisplay
	}

	faces := project(m, *display, size)
	for i := range faces {
		r.drawFace(canvas, &faces[i])
	}
	return canvas, len(faces)
}

func (r *Renderer) drawFace(canvas *image.NRGBA, p *projected) {
	mask := polygonMask(canvas.Rect, p.screen[:])
	bounds := mask.Bounds()
	if bounds.Empty() {
		return
	}

	layer := image.NewNRGBA(canvas.Rect)
	src := r.faceTexture(p.face)
	switch {
	case src == nil:
		draw.DrawMask(layer, bounds, image.NewUniform(FallbackColor), image.Point{}, mask, bounds.Min, draw.Over)
	default:
		if aff, ok := affineFor(src.Rect, p.screen[:]); ok {
			draw.NearestNeighbor.Transform(layer, aff, src, src.Rect, draw.Over, &draw.Options{
				DstMask:  mask,
				DstMaskP: image.Point{},
			})
		} else {
			fillPattern(layer, bounds, src, mask)
		}
	}

	if p.face.Shade {
		darken(layer, bounds, r.light.ShadeAlpha(mesh.Normal(p.view)))
	}
	draw.Draw(canvas, bounds, layer, bounds.Min, draw.Over)
}

// faceTexture returns the cropped face texture, or nil for the flat fallback.
func (r *Renderer) faceTexture(f *mesh.Face) *image.NRGBA {
	if !f.Textured || r.textures == nil {
		return nil
	}
	full, ok := r.textures.Resolve(f.Texture)
	if !ok {
		return nil
	}
	if cropped, ok := texture.Crop(full, f.UV); ok {
		return cropped
	}
	// Empty UV region: paint the whole texture as a pattern instead.
	return full
}

// affineFor maps the source rectangle onto the destination quad using its
// top-left, top-right and bottom-left corners. ok is false when the quad is
// not four points or the mapping is degenerate.
func affineFor(src image.Rectangle, quad []math.Vec2) (f64.Aff3, bool) {
	w, h := float64(src.Dx()), float64(src.Dy())
	if len(quad) != 4 || w <= 0 || h <= 0 {
		return f64.Aff3{}, false
	}

	tl := quad[0]
	a := quad[1].Sub(tl).Scale(1 / w)
	b := quad[3].Sub(tl).Scale(1 / h)
	if gomath.Abs(a.Cross(b)) < 1e-9 {
		return f64.Aff3{}, false
	}

	ox, oy := float64(src.Min.X), float64(src.Min.Y)
	return f64.Aff3{
		a.X, b.X, tl.X - a.X*ox - b.X*oy,
		a.Y, b.Y, tl.Y - a.Y*ox - b.Y*oy,
	}, true
}

// polygonMask rasterizes a screen-space polygon into an alpha mask covering
// rect. The mask bounds are shrunk to the polygon's bounding box.
func polygonMask(rect image.Rectangle, pts []math.Vec2) *image.Alpha {
	if len(pts) < 3 {
		return image.NewAlpha(image.Rectangle{})
	}

	z := vector.NewRasterizer(rect.Dx(), rect.Dy())
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()

	mask := image.NewAlpha(rect)
	z.Draw(mask, rect, image.Opaque, image.Point{})

	return mask.SubImage(polygonBounds(rect, pts)).(*image.Alpha)
}

func polygonBounds(rect image.Rectangle, pts []math.Vec2) image.Rectangle {
	minX, minY := gomath.Inf(1), gomath.Inf(1)
	maxX, maxY := gomath.Inf(-1), gomath.Inf(-1)
	for _, p := range pts {
		minX, maxX = gomath.Min(minX, p.X), gomath.Max(maxX, p.X)
		minY, maxY = gomath.Min(minY, p.Y), gomath.Max(maxY, p.Y)
	}
	b := image.Rect(
		int(gomath.Floor(minX)), int(gomath.Floor(minY)),
		int(gomath.Ceil(maxX)), int(gomath.Ceil(maxY)),
	)
	return b.Intersect(rect)
}

// pattern tiles src infinitely, anchored at origin.
type pattern struct {
	src    *image.NRGBA
	origin image.Point
}

func (p pattern) ColorModel() color.Model { return color.NRGBAModel }

func (p pattern) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (p pattern) At(x, y int) color.Color {
	b := p.src.Rect
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return FallbackColor
	}
	sx := ((x-p.origin.X)%w + w) % w
	sy := ((y-p.origin.Y)%h + h) % h
	return p.src.NRGBAAt(b.Min.X+sx, b.Min.Y+sy)
}

// fillPattern floods the masked polygon with src repeated from the polygon
// bounds' top-left corner.
func fillPattern(dst *image.NRGBA, bounds image.Rectangle, src *image.NRGBA, mask *image.Alpha) {
	draw.DrawMask(dst, bounds, pattern{src: src, origin: bounds.Min}, bounds.Min, mask, bounds.Min, draw.Over)
}

// darken composites black at alpha over every covered pixel of layer.
func darken(layer *image.NRGBA, bounds image.Rectangle, alpha float64) {
	if alpha <= 0 {
		return
	}
	keep := 1 - alpha
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := layer.PixOffset(x, y)
			if layer.Pix[i+3] == 0 {
				continue
			}
			layer.Pix[i] = uint8(float64(layer.Pix[i])*keep + 0.5)
			layer.Pix[i+1] = uint8(float64(layer.Pix[i+1])*keep + 0.5)
			layer.Pix[i+2] = uint8(float64(layer.Pix[i+2])*keep + 0.5)
		}
	}
}
