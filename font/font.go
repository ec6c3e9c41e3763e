// SPDX-License-Identifier: Unlicense OR MIT

// Package font implements the Font Registry: resolving code points to a
// preferred, fallback-ordered physical font, deriving styled/sized
// variants, and shaping text through github.com/go-text/typesetting.
package font

import (
	"golang.org/x/image/math/fixed"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/opentype/api"
	"github.com/go-text/typesetting/shaping"
)

// Direction is the shaping direction for a run of text.
type Direction uint8

const (
	LTR Direction = iota
	RTL
)

func (d Direction) toTypesetting() di.Direction {
	if d == RTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// Variant selects the emphasis (bold/italic) of a derived Font.
type Variant struct {
	Bold   bool
	Italic bool
}

// Key is a stable, monotonically increasing identifier assigned to a
// derived (style, size) font variant the first time the Registry derives
// it.
type Key uint32

// Metrics summarizes a font's vertical measurements at its derived size.
// The go-text-backed Font in this package does not fill in MaxAdvance; it
// is left zero.
type Metrics struct {
	Ascent, Descent, LineGap, MaxAdvance fixed.Int26_6
}

// ShapedGlyph is one glyph produced by shaping, addressed in the physical
// font's native glyph-id space.
type ShapedGlyph struct {
	GlyphID      uint16
	ClusterIndex int
	RuneCount    int
	XAdvance     fixed.Int26_6
	XOffset      fixed.Int26_6
	YOffset      fixed.Int26_6
	Bounds       fixed.Rectangle26_6
}

// GlyphRunLayout is the result of shaping one run of text against one Font.
type GlyphRunLayout struct {
	Glyphs  []ShapedGlyph
	Advance fixed.Int26_6
}

// SegmentOp identifies the kind of drawing command a glyph Outline segment
// carries, mirroring the vocabulary of golang.org/x/image/vector.
type SegmentOp uint8

const (
	SegmentMoveTo SegmentOp = iota
	SegmentLineTo
	SegmentQuadTo
	SegmentCubeTo
)

// Point is a 2D point in a Font's derived point-size coordinate space
// (origin at the glyph's own baseline, y-up).
type Point struct {
	X, Y float32
}

// Segment is one drawing command of a glyph Outline. Args holds 1 point for
// SegmentMoveTo/SegmentLineTo, 2 for SegmentQuadTo, 3 for SegmentCubeTo.
type Segment struct {
	Op   SegmentOp
	Args [3]Point
}

// Outline is a glyph's vector path, scaled to its Font's derived point
// size and ready for a coverage rasterizer.
type Outline struct {
	Segments []Segment
}

// Font is a typeface variant: either a physical typeface as discovered by
// the Registry, or a styled/sized variant of one produced by Derive.
//
// Font identity for caching and Key assignment purposes is the underlying
// physical face together with (Variant, pt size); two Fonts sharing a face,
// variant, and size are interchangeable.
type Font interface {
	// Supports reports whether this font has a glyph for cp.
	Supports(cp rune) bool
	// Derive returns a variant of this font at the given style and size.
	// The Registry is responsible for memoizing the result and assigning
	// it a stable Key the first time it is requested.
	Derive(variant Variant, ptSize fixed.Int26_6) Font
	// Shape lays out text[start:limit] in the given direction, returning
	// one glyph run.
	Shape(text []rune, start, limit int, dir Direction) GlyphRunLayout
	// Metrics reports this font's vertical measurements at its derived
	// size.
	Metrics() Metrics
	// Key is this font's stable per-process identifier. Key is the zero
	// value until the font has been derived at least once through a
	// Registry.
	Key() Key
	// RasterGlyph returns gid's vector outline scaled to this Font's
	// derived point size, or ok=false if gid has no vector outline (a
	// color/bitmap glyph, or an out-of-range id).
	RasterGlyph(gid uint16) (outline Outline, ok bool)
}

// face adapts a github.com/go-text/typesetting font.Face into Font. It
// represents one physical face at one derived (variant, size); the
// Registry memoizes faces per physical typeface.
type face struct {
	typeface tsfont.Face
	variant  Variant
	ptSize   fixed.Int26_6
	key      Key

	shaper shaping.HarfbuzzShaper
}

// newFace wraps a parsed typeface as an undeived Font (key 0, usable only
// for Supports/Derive until a Registry derives a sized variant).
func newFace(tf tsfont.Face) *face {
	return &face{typeface: tf}
}

func (f *face) Supports(cp rune) bool {
	return f.typeface.Cmap.Lookup(cp) != 0
}

func (f *face) Metrics() Metrics {
	m := f.typeface.LineMetrics()
	upem := f.typeface.Upem()
	if upem == 0 {
		return Metrics{}
	}
	// Line metrics are in font units; scale them to the derived size.
	scale := float32(f.ptSize) / float32(upem)
	return Metrics{
		Ascent:  fixed.Int26_6(float32(m.Ascent) * scale),
		Descent: fixed.Int26_6(-float32(m.Descent) * scale),
		LineGap: fixed.Int26_6(float32(m.LineGap) * scale),
	}
}

func (f *face) Key() Key { return f.key }

func (f *face) RasterGlyph(gid uint16) (Outline, bool) {
	data := f.typeface.GlyphData(tsfont.GID(gid))
	outline, ok := data.(api.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		return Outline{}, false
	}
	upem := f.typeface.Upem()
	if upem == 0 {
		return Outline{}, false
	}
	scale := float32(f.ptSize) / 64 / float32(upem)
	segs := make([]Segment, len(outline.Segments))
	for i, s := range outline.Segments {
		var op SegmentOp
		nargs := 1
		switch s.Op {
		case api.SegmentOpMoveTo:
			op = SegmentMoveTo
		case api.SegmentOpLineTo:
			op = SegmentLineTo
		case api.SegmentOpQuadTo:
			op = SegmentQuadTo
			nargs = 2
		case api.SegmentOpCubeTo:
			op = SegmentCubeTo
			nargs = 3
		}
		var args [3]Point
		for j := 0; j < nargs; j++ {
			args[j] = Point{X: s.Args[j].X * scale, Y: s.Args[j].Y * scale}
		}
		segs[i] = Segment{Op: op, Args: args}
	}
	return Outline{Segments: segs}, true
}

// Derive returns an unkeyed variant; Registry.Derive is what assigns a
// stable Key the first time a (face, variant, size) triple is seen.
func (f *face) Derive(variant Variant, ptSize fixed.Int26_6) Font {
	cp := *f
	cp.variant = variant
	cp.ptSize = ptSize
	cp.key = 0
	return &cp
}

func (f *face) Shape(text []rune, start, limit int, dir Direction) GlyphRunLayout {
	input := shaping.Input{
		Text:      text,
		RunStart:  start,
		RunEnd:    limit,
		Direction: dir.toTypesetting(),
		Face:      f.typeface,
		Size:      f.ptSize,
		Script:    language.LookupScript(text[start]),
	}
	out := f.shaper.Shape(input)
	glyphs := make([]ShapedGlyph, 0, len(out.Glyphs))
	for _, g := range out.Glyphs {
		var bounds fixed.Rectangle26_6
		bounds.Min.X = g.XBearing
		bounds.Min.Y = -g.YBearing
		bounds.Max = bounds.Min.Add(fixed.Point26_6{X: g.Width, Y: -g.Height})
		glyphs = append(glyphs, ShapedGlyph{
			GlyphID:      uint16(g.GlyphID),
			ClusterIndex: g.ClusterIndex,
			RuneCount:    g.RuneCount,
			XAdvance:     g.XAdvance,
			XOffset:      g.XOffset,
			YOffset:      g.YOffset,
			Bounds:       bounds,
		})
	}
	return GlyphRunLayout{Glyphs: glyphs, Advance: out.Advance}
}
