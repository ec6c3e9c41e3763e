// SPDX-License-Identifier: Unlicense OR MIT

package shape_test

import (
	"image"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/bidi"
	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/rendernode"
	"github.com/inkglyph/textkit/shape"
	"github.com/inkglyph/textkit/style"
)

type fakeTexture struct{ w, h int }

func (t *fakeTexture) Upload(offset, size image.Point, pixels []byte, stride int) {}

type fakeDevice struct{}

func (d *fakeDevice) NewTexture(w, h int, min, mag atlas.TextureFilter) (atlas.Texture, error) {
	return &fakeTexture{w, h}, nil
}

func testSetup(t *testing.T) (font.Font, *atlas.Manager) {
	t.Helper()
	f, err := font.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("font.Parse: %v", err)
	}
	reg := font.NewRegistry(nil, []font.FontFace{{Name: "Go", Font: f}})
	derived := reg.Derive(f, font.Variant{}, fixed.I(16))
	am := atlas.NewManager(&fakeDevice{}, 256, 256, 1, atlas.FilterLinear, atlas.FilterLinear)
	return derived, am
}

func TestShapePlainASCIIProducesMonotonicStaticRecords(t *testing.T) {
	f, am := testSetup(t)
	text := []rune("Hello")
	run := bidi.Run{Start: 0, Limit: len(text), Direction: font.LTR, Font: f}

	records, advance := shape.Shape(text, run, 0, am)
	if len(records) != len(text) {
		t.Fatalf("got %d records, want %d", len(records), len(text))
	}
	if advance <= 0 {
		t.Errorf("advance = %v, want > 0", advance)
	}
	prev := fixed.Int26_6(-1)
	for i, r := range records {
		if r.Kind != rendernode.KindStatic {
			t.Errorf("record %d kind = %v, want KindStatic", i, r.Kind)
		}
		if r.OffsetX <= prev {
			t.Errorf("record %d offsetX = %v, not strictly greater than previous %v", i, r.OffsetX, prev)
		}
		prev = r.OffsetX
	}
}

func TestShapeUnifiesDigitsIntoDigitRecords(t *testing.T) {
	f, am := testSetup(t)
	text := []rune("12")
	run := bidi.Run{Start: 0, Limit: len(text), Direction: font.LTR, Font: f}

	records, _ := shape.Shape(text, run, 0, am)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, r := range records {
		if r.Kind != rendernode.KindDigit {
			t.Errorf("record %d kind = %v, want KindDigit", i, r.Kind)
		}
		if r.SourceOffset != i {
			t.Errorf("record %d sourceOffset = %d, want %d", i, r.SourceOffset, i)
		}
		if r.Digits[0].Advance <= 0 {
			t.Errorf("record %d digit table advance = %v, want > 0", i, r.Digits[0].Advance)
		}
	}
}

func TestShapeObfuscatedEmitsRandomRecordsWithSharedStep(t *testing.T) {
	f, am := testSetup(t)
	text := []rune("AB")
	run := bidi.Run{
		Start: 0, Limit: len(text), Direction: font.LTR, Font: f,
		Style: style.Style{Obfuscated: true},
	}

	records, advance := shape.Shape(text, run, 0, am)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	step := records[0].Digits[0].Advance
	if records[0].OffsetX != 0 || records[1].OffsetX != step {
		t.Errorf("offsets = [%v,%v], want [0,%v]", records[0].OffsetX, records[1].OffsetX, step)
	}
	if advance != 2*step {
		t.Errorf("advance = %v, want %v", advance, 2*step)
	}
	for _, r := range records {
		if r.Kind != rendernode.KindRandom {
			t.Errorf("kind = %v, want KindRandom", r.Kind)
		}
	}
}

func TestShapeObfuscatedRTLWalksBackToFront(t *testing.T) {
	f, am := testSetup(t)
	text := []rune("AB")
	run := bidi.Run{
		Start: 0, Limit: len(text), Direction: font.RTL, Font: f,
		Style: style.Style{Obfuscated: true},
	}

	records, _ := shape.Shape(text, run, 0, am)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].StringIndex != 1 || records[1].StringIndex != 0 {
		t.Errorf("stringIndex order = [%d,%d], want [1,0]", records[0].StringIndex, records[1].StringIndex)
	}
}
