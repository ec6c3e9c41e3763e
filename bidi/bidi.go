// SPDX-License-Identifier: Unlicense OR MIT

// Package bidi implements the Bidi & Run Segmenter: it runs the Unicode
// Bidirectional Algorithm over stripped text and further splits each
// directional run by layout-relevant style (bold/italic/obfuscated) and by
// resolved font, producing a visually ordered sequence of shaping runs.
package bidi

import (
	"unicode"

	"golang.org/x/image/math/fixed"
	stdbidi "golang.org/x/text/unicode/bidi"

	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/style"
)

// Run is one (start, limit, direction, style, font) shaping unit over the
// stripped text, in visual order.
type Run struct {
	Start, Limit int
	Direction    font.Direction
	Style        style.Style
	Font         font.Font
}

// Segment splits text into visually ordered shaping runs. changes is the
// sorted StyleChange list produced by the formatting-code resolver;
// registry resolves code points to fonts and derives the (bold, italic)
// variant at ptSize for each run.
func Segment(text []rune, changes []style.StyleChange, registry *font.Registry, ptSize fixed.Int26_6) []Run {
	if len(text) == 0 {
		return nil
	}
	var out []Run
	for _, br := range splitDirection(text) {
		for _, sr := range splitStyle(br.start, br.limit, changes) {
			for _, fr := range splitFont(text, sr.start, sr.limit, sr.style, registry, ptSize) {
				out = append(out, Run{
					Start:     fr.start,
					Limit:     fr.limit,
					Direction: br.dir,
					Style:     sr.style,
					Font:      fr.font,
				})
			}
		}
	}
	return out
}

type directionRun struct {
	start, limit int
	dir          font.Direction
}

// splitDirection runs the Unicode Bidirectional Algorithm with the
// paragraph direction defaulted to LTR and emits the resulting runs in
// visual order. A paragraph with no strong RTL character yields a single
// LTR run.
func splitDirection(text []rune) []directionRun {
	var p stdbidi.Paragraph
	if _, err := p.SetString(string(text), stdbidi.DefaultDirection(stdbidi.LeftToRight)); err != nil {
		return []directionRun{{0, len(text), font.LTR}}
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return []directionRun{{0, len(text), font.LTR}}
	}
	runs := make([]directionRun, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		dir := font.LTR
		if run.Direction() == stdbidi.RightToLeft {
			dir = font.RTL
		}
		startRune, endRune := run.Pos()
		runs = append(runs, directionRun{startRune, endRune + 1, dir})
	}
	if n := len(runs); n > 0 && runs[n-1].limit < len(text) {
		// Trailing paragraph-separator runes SetString left unconsumed
		// belong to the final run's direction.
		runs[n-1].limit = len(text)
	}
	return runs
}

type styleRun struct {
	start, limit int
	style        style.Style
}

// splitStyle splits [start, limit) at every change whose layout-relevant
// bits (bold, italic, obfuscated) differ from the preceding sub-run; color
// and underline/strikethrough changes do not split here (§4.D).
func splitStyle(start, limit int, changes []style.StyleChange) []styleRun {
	cur := styleAt(start, changes)
	curBits := cur.LayoutBits()
	curStart := start
	var out []styleRun
	for _, ch := range changes {
		if ch.StrippedIndex <= start || ch.StrippedIndex >= limit {
			continue
		}
		if ch.Style.LayoutBits() == curBits {
			cur = ch.Style
			continue
		}
		out = append(out, styleRun{curStart, ch.StrippedIndex, cur})
		curStart = ch.StrippedIndex
		cur = ch.Style
		curBits = cur.LayoutBits()
	}
	out = append(out, styleRun{curStart, limit, cur})
	return out
}

// styleAt returns the effective style at stripped index pos, i.e. the
// style of the last change at or before pos.
func styleAt(pos int, changes []style.StyleChange) style.Style {
	var cur style.Style
	for _, ch := range changes {
		if ch.StrippedIndex > pos {
			break
		}
		cur = ch.Style
	}
	return cur
}

type fontRun struct {
	start, limit int
	font         font.Font
}

// isFontSplitExempt reports code points that never trigger a font split:
// space and combining marks, which are expected to render using whichever
// neighboring font the run has already settled on.
func isFontSplitExempt(r rune) bool {
	if r == ' ' {
		return true
	}
	return unicode.In(r, unicode.Mn, unicode.Me)
}

// splitFont walks [start, limit) and splits whenever the resolved font
// changes, skipping exempt code points for the purpose of deciding a split.
func splitFont(text []rune, start, limit int, st style.Style, registry *font.Registry, ptSize fixed.Int26_6) []fontRun {
	variant := font.Variant{Bold: st.Bold, Italic: st.Italic}
	var out []fontRun
	curStart := start
	var cur font.Font
	for i := start; i < limit; i++ {
		r := text[i]
		if isFontSplitExempt(r) {
			continue
		}
		f := registry.Derive(registry.Lookup(r), variant, ptSize)
		if cur == nil {
			cur = f
			continue
		}
		if f != cur {
			out = append(out, fontRun{curStart, i, cur})
			curStart = i
			cur = f
		}
	}
	if cur == nil {
		// Every code point in the sub-run was exempt (e.g. all spaces).
		cur = registry.Derive(registry.Lookup(text[start]), variant, ptSize)
	}
	out = append(out, fontRun{curStart, limit, cur})
	return out
}
