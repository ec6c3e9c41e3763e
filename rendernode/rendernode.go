// SPDX-License-Identifier: Unlicense OR MIT

// Package rendernode defines the RenderNode data model: the immutable,
// shareable result of laying out one (text, style) pair, and the
// convenience Draw method that writes it to a caller-supplied vertex sink.
package rendernode

import (
	"math/rand"

	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/f32"
	"github.com/inkglyph/textkit/style"
)

// RecordKind tags the three GlyphRecord variants.
type RecordKind uint8

const (
	KindStatic RecordKind = iota
	KindDigit
	KindRandom
)

// GlyphRecord is one positioned glyph, tagged by how its drawn form is
// chosen at draw time.
type GlyphRecord struct {
	Kind RecordKind
	// StringIndex addresses the original, unstripped string this glyph
	// renders (or, for Digit, the digit read at draw time).
	StringIndex int
	// OffsetX is the advance from the run's origin, already adjusted for
	// RTL runs.
	OffsetX fixed.Int26_6

	HasColor bool
	Color    style.Color

	// Underline and Strikethrough are consumed by the Assembler while
	// coalescing EffectSpans; they do not need to survive on the final
	// published RenderNode.Glyphs, but are kept here so the Shaper and
	// Assembler can share one record type across the pipeline.
	Underline     bool
	Strikethrough bool

	// Glyph is populated for KindStatic.
	Glyph atlas.TexturedGlyph
	// Digits is populated for KindDigit and KindRandom: all ten digit
	// forms, so the actual drawn glyph can be picked at draw time.
	Digits [10]atlas.TexturedGlyph
	// SourceOffset is the index into the original string to read the
	// live digit from, for KindDigit.
	SourceOffset int
}

// EffectKind distinguishes the two decoration rectangles a RenderNode can
// carry.
type EffectKind uint8

const (
	EffectUnderline EffectKind = iota
	EffectStrikethrough
)

// EffectSpan is a horizontal decoration rectangle, accumulated per run and
// coalesced across contiguous glyphs sharing the same color and kind.
type EffectSpan struct {
	X0, X1   fixed.Int26_6
	HasColor bool
	Color    style.Color
	Kind     EffectKind
}

// RenderNode is the immutable result of laying out one (text, style) pair.
// It is safe to share and read concurrently once constructed.
type RenderNode struct {
	Glyphs     []GlyphRecord
	Effects    []EffectSpan
	Advance    fixed.Int26_6
	HasEffects bool
}

// Color4 is a straight-alpha float color, the form a VertexSink consumes.
type Color4 struct {
	R, G, B, A float32
}

func colorOf(c style.Color, alpha float32) Color4 {
	r, g, b := c.RGB()
	return Color4{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: alpha}
}

// VertexSink receives the quads a RenderNode draws. Callers adapt it to
// their own GPU command submission path; textkit does not prescribe one.
type VertexSink interface {
	// Glyph draws one atlas-backed quad at pos, sized in on-screen
	// pixels, sampling [uv0,uv1] of the atlas sheet identified by
	// sheetID, modulated by color.
	Glyph(sheetID int, pos, size f32.Point, uv0, uv1 f32.Point, color Color4)
	// Rect draws one solid-color rectangle, for underline and
	// strikethrough decorations.
	Rect(pos, size f32.Point, color Color4)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// Draw writes n's glyphs and effect spans to sink, with the run's origin
// at pen. source is the original (unstripped) string, consulted for the
// live digit value of KindDigit records; rng (nil-able, in which case the
// math/rand package-level source is used; a zero-value *rand.Rand is not
// valid, so pass rand.New(...) — textkit.Renderer keeps one per render
// owner) supplies the draw-time digit for KindRandom records. base/alpha are used wherever a record carries no explicit color
// override.
func (n *RenderNode) Draw(sink VertexSink, source []rune, pen f32.Point, base style.Color, alpha float32, rng *rand.Rand) {
	for _, g := range n.Glyphs {
		tg, ok := resolveGlyph(g, source, rng)
		if !ok {
			continue
		}
		col := base
		if g.HasColor {
			col = g.Color
		}
		pos := f32.Point{
			X: pen.X + fixedToFloat(g.OffsetX) + fixedToFloat(tg.BearingX),
			Y: pen.Y - fixedToFloat(tg.BearingY),
		}
		size := f32.Point{X: float32(tg.Width), Y: float32(tg.Height)}
		sink.Glyph(tg.SheetID, pos, size, f32.Point{X: tg.U0, Y: tg.V0}, f32.Point{X: tg.U1, Y: tg.V1}, colorOf(col, alpha))
	}
	for _, e := range n.Effects {
		col := base
		if e.HasColor {
			col = e.Color
		}
		const thickness = 1
		pos := f32.Point{X: pen.X + fixedToFloat(e.X0), Y: pen.Y}
		size := f32.Point{X: fixedToFloat(e.X1 - e.X0), Y: thickness}
		sink.Rect(pos, size, colorOf(col, alpha))
	}
}

func resolveGlyph(g GlyphRecord, source []rune, rng *rand.Rand) (atlas.TexturedGlyph, bool) {
	switch g.Kind {
	case KindStatic:
		if g.Glyph.Width == 0 && g.Glyph.Height == 0 {
			return atlas.TexturedGlyph{}, false
		}
		return g.Glyph, true
	case KindDigit:
		if g.SourceOffset < 0 || g.SourceOffset >= len(source) {
			return atlas.TexturedGlyph{}, false
		}
		idx := int(source[g.SourceOffset] - '0')
		if idx < 0 || idx > 9 {
			idx = 0
		}
		return g.Digits[idx], true
	case KindRandom:
		if rng == nil {
			return g.Digits[rand.Intn(10)], true
		}
		return g.Digits[rng.Intn(10)], true
	default:
		return atlas.TexturedGlyph{}, false
	}
}
