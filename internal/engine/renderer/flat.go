package renderer

import (
	"image"
	gomath "math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/Faultbox/mcassets/pkg/formats"
	"github.com/Faultbox/mcassets/pkg/math"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// RenderFlat composites layer textures in order, each scaled to the full
// canvas, then applies the display transform's Z rotation and X/Y scale as a
// single 2D affine about the canvas centre. Missing layers are skipped; the
// second return value reports how many were drawn.
func (r *Renderer) RenderFlat(layers []resource.Location, display *formats.Transform, size int) (*image.NRGBA, int) {
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	if size <= 0 || r.textures == nil {
		return out, 0
	}
	if display == nil {
		display = &DefaultDisplay
	}

	stack := image.NewNRGBA(out.Rect)
	drawn := 0
	for _, loc := range layers {
		tex, ok := r.textures.Resolve(loc)
		if !ok || tex.Rect.Empty() {
			continue
		}
		draw.NearestNeighbor.Scale(stack, stack.Rect, tex, tex.Rect, draw.Over, nil)
		drawn++
	}
	if drawn == 0 {
		return out, 0
	}

	aff, ok := flatAffine(*display, size)
	if !ok {
		return out, 0
	}
	draw.NearestNeighbor.Transform(out, aff, stack, stack.Rect, draw.Over, nil)
	return out, drawn
}

// flatAffine maps canvas pixels through scale then rotation about the centre.
// Screen Y points down, so a positive angle turns the image counter-clockwise.
func flatAffine(t formats.Transform, size int) (f64.Aff3, bool) {
	sx, sy := t.Scale[0], t.Scale[1]
	theta := math.Deg2Rad(t.Rotation[2])
	c, s := gomath.Cos(theta), gomath.Sin(theta)

	a, b := c*sx, s*sy
	d, e := -s*sx, c*sy
	if gomath.Abs(a*e-b*d) < 1e-9 {
		return f64.Aff3{}, false
	}

	half := float64(size) / 2
	return f64.Aff3{
		a, b, half - a*half - b*half,
		d, e, half - d*half - e*half,
	}, true
}
