// SPDX-License-Identifier: Unlicense OR MIT

package bidi_test

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/bidi"
	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/style"
)

func testRegistry(t *testing.T) *font.Registry {
	t.Helper()
	f, err := font.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("font.Parse: %v", err)
	}
	return font.NewRegistry(nil, []font.FontFace{{Name: "Go", Font: f}})
}

func defaultChanges(s style.Style) []style.StyleChange {
	return []style.StyleChange{{OriginalIndex: 0, StrippedIndex: 0, Style: s}}
}

// TestSegmentMixedBidiOrdersHebrewRunRTL exercises scenario 4: a Latin
// letter, two Hebrew letters, and a trailing Latin letter should segment
// into an LTR run, an RTL run, and a second LTR run, with the Hebrew run's
// direction reported as RTL while its rune order (within the run) is left
// unreordered for the shaper to invert.
func TestSegmentMixedBidiOrdersHebrewRunRTL(t *testing.T) {
	text := []rune("aאבb")
	reg := testRegistry(t)

	runs := bidi.Segment(text, defaultChanges(style.Style{}), reg, fixed.I(16))

	if len(runs) != 3 {
		t.Fatalf("Segment produced %d runs, want 3 (LTR, RTL, LTR): %+v", len(runs), runs)
	}
	if runs[0].Direction != font.LTR || runs[0].Start != 0 || runs[0].Limit != 1 {
		t.Errorf("run 0 = %+v, want LTR [0,1)", runs[0])
	}
	if runs[1].Direction != font.RTL || runs[1].Start != 1 || runs[1].Limit != 3 {
		t.Errorf("run 1 = %+v, want RTL [1,3)", runs[1])
	}
	if runs[2].Direction != font.LTR || runs[2].Start != 3 || runs[2].Limit != 4 {
		t.Errorf("run 2 = %+v, want LTR [3,4)", runs[2])
	}
}

func TestSegmentSplitsOnBoldItalicNotColor(t *testing.T) {
	text := []rune("AB")
	reg := testRegistry(t)
	changes := []style.StyleChange{
		{OriginalIndex: 0, StrippedIndex: 0, Style: style.Style{}},
		{OriginalIndex: 0, StrippedIndex: 1, Style: style.Style{Bold: true}},
	}
	runs := bidi.Segment(text, changes, reg, fixed.I(16))
	if len(runs) != 2 {
		t.Fatalf("Segment produced %d runs, want 2 (bold change splits the run): %+v", len(runs), runs)
	}

	colorOnly := []rune("AB")
	changes2 := []style.StyleChange{
		{OriginalIndex: 0, StrippedIndex: 0, Style: style.Style{}},
		{OriginalIndex: 0, StrippedIndex: 1, Style: style.Style{Color: style.RGB(255, 0, 0), ColorIsSet: true}},
	}
	runs2 := bidi.Segment(colorOnly, changes2, reg, fixed.I(16))
	if len(runs2) != 1 {
		t.Fatalf("Segment produced %d runs, want 1 (color change must not split a run): %+v", len(runs2), runs2)
	}
}

func TestSegmentEmptyText(t *testing.T) {
	reg := testRegistry(t)
	runs := bidi.Segment(nil, defaultChanges(style.Style{}), reg, fixed.I(16))
	if len(runs) != 0 {
		t.Errorf("Segment(nil) = %+v, want no runs", runs)
	}
}
