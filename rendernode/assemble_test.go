// SPDX-License-Identifier: Unlicense OR MIT

package rendernode_test

import (
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/rendernode"
	"github.com/inkglyph/textkit/style"
)

func TestAssembleRemapsStringIndexPastFormattingCodes(t *testing.T) {
	raw := "§cRed§r and black"
	def := style.Style{Color: style.RGB(0xFF, 0xFF, 0xFF), ColorIsSet: true}
	stripped, changes := style.Resolve(raw, def)

	want := "Red and black"
	if string(stripped) != want {
		t.Fatalf("stripped = %q, want %q", string(stripped), want)
	}

	var records []rendernode.GlyphRecord
	var offset fixed.Int26_6
	step := fixed.I(10)
	for i := range stripped {
		records = append(records, rendernode.GlyphRecord{
			Kind:        rendernode.KindStatic,
			StringIndex: i,
			OffsetX:     offset,
		})
		offset += step
	}

	node := rendernode.Assemble(records, changes, offset)

	red := style.DefaultPalette[0xc]
	for i := 0; i < 3; i++ {
		if !node.Glyphs[i].HasColor || node.Glyphs[i].Color != red {
			t.Errorf("glyph %d (Red) color = %+v, want red", i, node.Glyphs[i])
		}
	}
	for i := 3; i < len(node.Glyphs); i++ {
		if !node.Glyphs[i].HasColor || node.Glyphs[i].Color != def.Color {
			t.Errorf("glyph %d color = %+v, want default white", i, node.Glyphs[i])
		}
	}

	// "R" was at raw index 2 (after the 2-rune "§c" escape); "d" of "and"
	// (stripped index 6) sits after both escapes, at raw index 10.
	wantIndex := map[int]int{0: 2, 1: 3, 2: 4, 6: 10}
	for stripIdx, origIdx := range wantIndex {
		if got := node.Glyphs[stripIdx].StringIndex; got != origIdx {
			t.Errorf("glyph at stripped index %d remapped to %d, want %d", stripIdx, got, origIdx)
		}
	}
}

func TestAssembleRemapsSourceOffsetForDigitRecords(t *testing.T) {
	raw := "§lScore: 0"
	def := style.Style{}
	stripped, changes := style.Resolve(raw, def)

	want := "Score: 0"
	if string(stripped) != want {
		t.Fatalf("stripped = %q, want %q", string(stripped), want)
	}

	var records []rendernode.GlyphRecord
	var offset fixed.Int26_6
	step := fixed.I(10)
	for i, r := range stripped {
		rec := rendernode.GlyphRecord{
			Kind:        rendernode.KindStatic,
			StringIndex: i,
			OffsetX:     offset,
			Glyph:       atlas.TexturedGlyph{Advance: step},
		}
		if r >= '0' && r <= '9' {
			rec.Kind = rendernode.KindDigit
			rec.SourceOffset = i
		}
		records = append(records, rec)
		offset += step
	}

	node := rendernode.Assemble(records, changes, offset)

	// stripped index 7 (the '0') sits after the 2-rune "§l" escape, at raw
	// index 9; SourceOffset must be remapped the same way as StringIndex
	// so draw-time lookups into the raw string land on the right rune.
	var digit *rendernode.GlyphRecord
	for i := range node.Glyphs {
		if node.Glyphs[i].Kind == rendernode.KindDigit {
			digit = &node.Glyphs[i]
		}
	}
	if digit == nil {
		t.Fatalf("no KindDigit record in assembled glyphs")
	}
	if digit.StringIndex != 9 {
		t.Errorf("digit StringIndex = %d, want 9", digit.StringIndex)
	}
	if digit.SourceOffset != 9 {
		t.Errorf("digit SourceOffset = %d, want 9 (raw[9] == '0')", digit.SourceOffset)
	}
	rawRunes := []rune(raw)
	if rawRunes[digit.SourceOffset] != '0' {
		t.Errorf("raw[%d] = %q, want '0'", digit.SourceOffset, rawRunes[digit.SourceOffset])
	}
}

func TestAssembleCoalescesUnderlineAndStrikethroughSpans(t *testing.T) {
	raw := "§n§mAB§rCD"
	def := style.Style{}
	stripped, changes := style.Resolve(raw, def)

	if string(stripped) != "ABCD" {
		t.Fatalf("stripped = %q, want %q", string(stripped), "ABCD")
	}

	records, total := flatRecordsPlain(stripped)
	node := rendernode.Assemble(records, changes, total)

	var underline, strike []rendernode.EffectSpan
	for _, e := range node.Effects {
		switch e.Kind {
		case rendernode.EffectUnderline:
			underline = append(underline, e)
		case rendernode.EffectStrikethrough:
			strike = append(strike, e)
		}
	}

	if len(underline) != 1 {
		t.Fatalf("underline spans = %d, want 1", len(underline))
	}
	if len(strike) != 1 {
		t.Fatalf("strikethrough spans = %d, want 1", len(strike))
	}

	wantEnd := fixed.I(20) // end of glyph "B" (two 10-unit glyphs, A then B)
	if underline[0].X0 != 0 || underline[0].X1 != wantEnd {
		t.Errorf("underline span = [%v,%v], want [0,%v]", underline[0].X0, underline[0].X1, wantEnd)
	}
	if strike[0].X0 != 0 || strike[0].X1 != wantEnd {
		t.Errorf("strikethrough span = [%v,%v], want [0,%v]", strike[0].X0, strike[0].X1, wantEnd)
	}
}

func flatRecordsPlain(stripped []rune) ([]rendernode.GlyphRecord, fixed.Int26_6) {
	var records []rendernode.GlyphRecord
	var offset fixed.Int26_6
	step := fixed.I(10)
	for i := range stripped {
		records = append(records, rendernode.GlyphRecord{
			Kind:        rendernode.KindStatic,
			StringIndex: i,
			OffsetX:     offset,
			Glyph:       atlas.TexturedGlyph{Advance: step},
		})
		offset += step
	}
	return records, offset
}
