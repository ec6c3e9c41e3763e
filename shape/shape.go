// SPDX-License-Identifier: Unlicense OR MIT

// Package shape implements the Shaper: it turns one bidi.Run into a
// sequence of positioned rendernode.GlyphRecord values, unifying ASCII
// digits onto a shared glyph before shaping so that digit-insensitive
// cache keys (package rendercache) stay valid, and substituting the
// obfuscated-run algorithm (no shaper call, random-table references)
// when the run's style carries Style.Obfuscated.
package shape

import (
	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/bidi"
	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/rendernode"
)

// Shape lays out run, returning its glyph records (StringIndex values are
// still stripped-text indices; the Assembler remaps them) and the run's
// total advance in logical pixels. base is the x position, in logical
// pixels, where the run begins; this module assumes the underlying shaper
// already delivers glyphs for an RTL run in final visual (left-to-right
// draw) order, so one sequential cursor positions every run regardless of
// direction (see DESIGN.md).
func Shape(text []rune, run bidi.Run, base fixed.Int26_6, am *atlas.Manager) ([]rendernode.GlyphRecord, fixed.Int26_6) {
	if run.Style.Obfuscated {
		return shapeObfuscated(run, base, am)
	}
	return shapeNormal(text, run, base, am)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// shapeNormal implements §4.E's non-obfuscated algorithm: digit
// unification before shaping, then one record per retained glyph.
func shapeNormal(text []rune, run bidi.Run, base fixed.Int26_6, am *atlas.Manager) ([]rendernode.GlyphRecord, fixed.Int26_6) {
	sub := make([]rune, len(text))
	copy(sub, text)
	for i := run.Start; i < run.Limit; i++ {
		if isASCIIDigit(sub[i]) {
			sub[i] = '0'
		}
	}

	out := run.Font.Shape(sub, run.Start, run.Limit, run.Direction)
	factor := fixed.Int26_6(am.ResolutionFactor())
	digits := am.Digits(run.Font)

	var records []rendernode.GlyphRecord
	var pen fixed.Int26_6
	for _, g := range out.Glyphs {
		local := pen + g.XOffset
		pen += g.XAdvance
		if g.XAdvance == 0 && g.Bounds.Min == g.Bounds.Max {
			continue
		}
		offsetX := base + local/factor

		if g.ClusterIndex >= 0 && g.ClusterIndex < len(text) && isASCIIDigit(text[g.ClusterIndex]) {
			records = append(records, rendernode.GlyphRecord{
				Kind:         rendernode.KindDigit,
				StringIndex:  g.ClusterIndex,
				OffsetX:      offsetX,
				Digits:       digits,
				SourceOffset: g.ClusterIndex,
			})
			continue
		}

		tg, ok := am.Glyph(run.Font, g)
		if !ok {
			continue
		}
		records = append(records, rendernode.GlyphRecord{
			Kind:        rendernode.KindStatic,
			StringIndex: g.ClusterIndex,
			OffsetX:     offsetX,
			Glyph:       tg,
		})
	}
	return records, out.Advance / factor
}

// shapeObfuscated implements §4.E's obfuscated algorithm: one Random
// record per code point, no shaper call. RTL runs are walked back to
// front so the logically first code point lands visually rightmost.
func shapeObfuscated(run bidi.Run, base fixed.Int26_6, am *atlas.Manager) ([]rendernode.GlyphRecord, fixed.Int26_6) {
	digits := am.Digits(run.Font)
	step := digits[0].Advance
	n := run.Limit - run.Start

	var records []rendernode.GlyphRecord
	pen := base
	emit := func(i int) {
		records = append(records, rendernode.GlyphRecord{
			Kind:        rendernode.KindRandom,
			StringIndex: i,
			OffsetX:     pen,
			Digits:      digits,
		})
		pen += step
	}
	if run.Direction == font.RTL {
		for i := run.Limit - 1; i >= run.Start; i-- {
			emit(i)
		}
	} else {
		for i := run.Start; i < run.Limit; i++ {
			emit(i)
		}
	}
	return records, fixed.Int26_6(n) * step
}
