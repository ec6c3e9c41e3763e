// SPDX-License-Identifier: Unlicense OR MIT

package atlas

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/inkglyph/textkit/font"
)

// coverageBitmap is a tightly packed (stride == W) alpha8 coverage buffer
// for one glyph, in its own local coordinate space.
type coverageBitmap struct {
	Pix  []byte
	W, H int
}

// rasterizeOutline rasterizes a glyph's vector outline into a coverage
// bitmap using golang.org/x/image/vector, flipping from the font's y-up
// space into the rasterizer's y-down image space. ok is false for an
// empty or degenerate outline (zero-advance, zero-bounds glyphs such as
// combining marks and space).
func rasterizeOutline(o font.Outline) (coverageBitmap, bool) {
	if len(o.Segments) == 0 {
		return coverageBitmap{}, false
	}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range o.Segments {
		for i := 0; i < segArgCount(seg.Op); i++ {
			p := seg.Args[i]
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	if minX >= maxX || minY >= maxY {
		return coverageBitmap{}, false
	}
	w := int(math.Ceil(float64(maxX - minX)))
	h := int(math.Ceil(float64(maxY - minY)))
	if w <= 0 || h <= 0 {
		return coverageBitmap{}, false
	}

	conv := func(p font.Point) (float32, float32) {
		return p.X - minX, maxY - p.Y
	}
	r := vector.NewRasterizer(w, h)
	for _, seg := range o.Segments {
		switch seg.Op {
		case font.SegmentMoveTo:
			x, y := conv(seg.Args[0])
			r.MoveTo(x, y)
		case font.SegmentLineTo:
			x, y := conv(seg.Args[0])
			r.LineTo(x, y)
		case font.SegmentQuadTo:
			x1, y1 := conv(seg.Args[0])
			x2, y2 := conv(seg.Args[1])
			r.QuadTo(x1, y1, x2, y2)
		case font.SegmentCubeTo:
			x1, y1 := conv(seg.Args[0])
			x2, y2 := conv(seg.Args[1])
			x3, y3 := conv(seg.Args[2])
			r.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return coverageBitmap{Pix: dst.Pix, W: w, H: h}, true
}

func segArgCount(op font.SegmentOp) int {
	switch op {
	case font.SegmentQuadTo:
		return 2
	case font.SegmentCubeTo:
		return 3
	default:
		return 1
	}
}
