// SPDX-License-Identifier: Unlicense OR MIT

package rendernode

import (
	"sort"

	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/style"
)

// Assemble implements the Render-Node Assembler: it merges shaped runs
// (already concatenated in visual order) into one RenderNode, re-indexing
// each glyph's StringIndex from the stripped text back to the original
// formatted string, installing per-glyph color overlays, and coalescing
// underline/strikethrough spans.
//
// records' StringIndex fields must still be stripped-text indices (as the
// Shaper produces them); changes is the StyleChange list the
// Formatting-Code Resolver produced for the same text; advance is the sum
// of the per-run advances the caller already computed.
func Assemble(records []GlyphRecord, changes []style.StyleChange, advance fixed.Int26_6) *RenderNode {
	all := make([]GlyphRecord, len(records))
	copy(all, records)
	sort.SliceStable(all, func(i, j int) bool { return all[i].StringIndex < all[j].StringIndex })

	// changes[0] is always the leading sentinel at (0, 0); real escapes
	// start at index 1. Walk all and changes in lockstep, advancing
	// changeIdx and the cumulative shift every time a real escape's
	// stripped_index is reached, per §4.F step 3.
	shift := 0
	changeIdx := 1
	for i := range all {
		st := styleAt(all[i].StringIndex, changes)
		all[i].HasColor = st.ColorIsSet
		all[i].Color = st.Color
		all[i].Underline = st.Underline
		all[i].Strikethrough = st.Strikethrough

		for changeIdx < len(changes) && changes[changeIdx].StrippedIndex <= all[i].StringIndex {
			shift += 2
			changeIdx++
		}
		all[i].StringIndex += shift
		if all[i].Kind == KindDigit {
			all[i].SourceOffset += shift
		}
	}

	var effects []EffectSpan
	effects = append(effects, coalesceEffects(all, EffectUnderline)...)
	effects = append(effects, coalesceEffects(all, EffectStrikethrough)...)

	return &RenderNode{
		Glyphs:     all,
		Effects:    effects,
		Advance:    advance,
		HasEffects: len(effects) > 0,
	}
}

// styleAt returns the style in effect at a stripped-text index: the style
// of the last change at or before that index.
func styleAt(strippedIndex int, changes []style.StyleChange) style.Style {
	var cur style.Style
	for _, c := range changes {
		if c.StrippedIndex > strippedIndex {
			break
		}
		cur = c.Style
	}
	return cur
}

func glyphAdvance(g GlyphRecord) fixed.Int26_6 {
	if g.Kind == KindStatic {
		return g.Glyph.Advance
	}
	return g.Digits[0].Advance
}

// coalesceEffects scans all in order and merges contiguous glyphs flagged
// for kind into spans, splitting whenever the color changes.
func coalesceEffects(all []GlyphRecord, kind EffectKind) []EffectSpan {
	flagged := func(g GlyphRecord) bool {
		if kind == EffectUnderline {
			return g.Underline
		}
		return g.Strikethrough
	}

	var spans []EffectSpan
	var open bool
	var span EffectSpan
	for _, g := range all {
		if !flagged(g) {
			if open {
				spans = append(spans, span)
				open = false
			}
			continue
		}
		end := g.OffsetX + glyphAdvance(g)
		if open && g.HasColor == span.HasColor && g.Color == span.Color {
			span.X1 = end
			continue
		}
		if open {
			spans = append(spans, span)
		}
		span = EffectSpan{X0: g.OffsetX, X1: end, HasColor: g.HasColor, Color: g.Color, Kind: kind}
		open = true
	}
	if open {
		spans = append(spans, span)
	}
	return spans
}
