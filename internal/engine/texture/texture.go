// Package texture provides texture decoding, cropping and caching for the
// icon renderer.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	gomath "math"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
)

// ErrNotPNG is returned for texture data that is not a PNG image.
var ErrNotPNG = errors.New("texture data is not a png image")

// Decode decodes PNG data into an NRGBA image. Animation strips (taller
// than wide) are reduced to their first square frame.
func Decode(data []byte) (*image.NRGBA, error) {
	if !filetype.Is(data, "png") {
		return nil, ErrNotPNG
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	return FirstFrame(ToNRGBA(img)), nil
}

// ToNRGBA converts any image to a zero-origin NRGBA image.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}

// FirstFrame returns the top square of a vertical animation strip, or img
// itself when it is not taller than wide.
func FirstFrame(img *image.NRGBA) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h <= w {
		return img
	}
	return ToNRGBA(img.SubImage(image.Rect(img.Rect.Min.X, img.Rect.Min.Y, img.Rect.Min.X+w, img.Rect.Min.Y+w)))
}

// Crop cuts the region described by a UV box (0..16 units on both axes) out
// of img. The box is clamped to the image's pixel bounds; a reversed box
// mirrors the region. A nil uv returns img unchanged. ok is false when the
// clamped region is empty.
func Crop(img *image.NRGBA, uv *[4]float64) (*image.NRGBA, bool) {
	if img == nil {
		return nil, false
	}
	if uv == nil {
		return img, img.Rect.Dx() > 0 && img.Rect.Dy() > 0
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	u1, v1, u2, v2 := uv[0], uv[1], uv[2], uv[3]
	mirrorX, mirrorY := u1 > u2, v1 > v2
	if mirrorX {
		u1, u2 = u2, u1
	}
	if mirrorY {
		v1, v2 = v2, v1
	}

	x0 := clampPixel(u1*float64(w)/16, w)
	x1 := clampPixel(u2*float64(w)/16, w)
	y0 := clampPixel(v1*float64(h)/16, h)
	y1 := clampPixel(v2*float64(h)/16, h)
	if x1 <= x0 || y1 <= y0 {
		return nil, false
	}

	o := img.Rect.Min
	out := ToNRGBA(img.SubImage(image.Rect(o.X+x0, o.Y+y0, o.X+x1, o.Y+y1)))
	if mirrorX || mirrorY {
		out = mirror(out, mirrorX, mirrorY)
	}
	return out, true
}

func clampPixel(v float64, limit int) int {
	p := int(gomath.Round(v))
	if p < 0 {
		return 0
	}
	if p > limit {
		return limit
	}
	return p
}

// mirror returns a flipped copy of img.
func mirror(img *image.NRGBA, horizontal, vertical bool) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewNRGBA(img.Rect)
	for y := 0; y < h; y++ {
		sy := y
		if vertical {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if horizontal {
				sx = w - 1 - x
			}
			si := img.PixOffset(sx, sy)
			di := out.PixOffset(x, y)
			copy(out.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return out
}
