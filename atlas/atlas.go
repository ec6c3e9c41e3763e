// SPDX-License-Identifier: Unlicense OR MIT

// Package atlas implements the Glyph Atlas Manager: it rasterizes glyphs
// to a CPU coverage buffer and packs them into GPU textures with a
// shelf/next-line allocator, returning immutable TexturedGlyph handles.
//
// Manager is render-owner-confined: its sheets, glyph maps, and the
// Device it drives must only be touched from the goroutine that owns the
// GPU context, matching the concurrency model the rest of this module
// assumes.
package atlas

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/internal/logonce"
)

// TextureFilter selects GPU sampling behavior for an atlas sheet.
type TextureFilter uint8

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

// Texture is the minimal GPU surface the atlas needs: sub-region uploads
// of single-channel coverage bytes at byte alignment 1.
type Texture interface {
	Upload(offset, size image.Point, pixels []byte, stride int)
}

// Device creates the GPU textures backing atlas sheets.
type Device interface {
	NewTexture(width, height int, minFilter, magFilter TextureFilter) (Texture, error)
}

// TexturedGlyph is an immutable reference to one packed glyph: which sheet
// it lives on, its UV rectangle (inclusive of one texel of its 2-texel
// transparent border, to hide bilinear bleed), its advance and bearings
// scaled down by the Manager's resolution factor, and the inner size of its
// coverage bitmap (Width, Height) in atlas texels, which is not scaled.
type TexturedGlyph struct {
	SheetID              int
	U0, V0, U1, V1       float32
	Advance              fixed.Int26_6
	BearingX, BearingY   fixed.Int26_6
	Width, Height        int
}

// FontMetrics is a Manager-scoped summary of a Font's vertical
// measurements, scaled by the Manager's resolution factor.
type FontMetrics struct {
	Ascent, Descent, LineGap, MaxAdvance fixed.Int26_6
}

const (
	glyphBorder  = 2 // texels, per the rasterize & pack algorithm
	shelfSpacing = 1
)

type sheet struct {
	id                       int
	tex                      Texture
	width, height            int
	cursorX, cursorY         int
	currentLineHeight        int
}

type glyphKey struct {
	fontKey font.Key
	glyphID uint16
}

// Manager rasterizes glyphs on demand and packs them into Device textures.
type Manager struct {
	dev                      Device
	sheetWidth, sheetHeight  int
	resolutionFactor         int
	minFilter, magFilter     TextureFilter

	sheets      []*sheet
	glyphs      map[glyphKey]TexturedGlyph
	digitTables map[font.Key][10]TexturedGlyph
	metrics     map[font.Key]FontMetrics

	warnings logonce.Logger
}

// NewManager constructs a Manager that allocates sheetWidth x sheetHeight
// sheets on demand. resolutionFactor must be 1, 2, or 4 per this module's
// configuration surface.
func NewManager(dev Device, sheetWidth, sheetHeight, resolutionFactor int, minFilter, magFilter TextureFilter) *Manager {
	return &Manager{
		dev:              dev,
		sheetWidth:       sheetWidth,
		sheetHeight:      sheetHeight,
		resolutionFactor: resolutionFactor,
		minFilter:        minFilter,
		magFilter:        magFilter,
		glyphs:           make(map[glyphKey]TexturedGlyph),
		digitTables:      make(map[font.Key][10]TexturedGlyph),
		metrics:          make(map[font.Key]FontMetrics),
	}
}

// ResolutionFactor reports the oversampling ratio the Manager rasterizes
// and packs at. Callers that shape against an oversampled font variant
// (the Shaper) divide shaper-space coordinates by this factor to recover
// logical pixel placement.
func (m *Manager) ResolutionFactor() int {
	return m.resolutionFactor
}

// Metrics returns f's vertical measurements, scaled by the resolution
// factor and memoized on f.Key().
func (m *Manager) Metrics(f font.Font) FontMetrics {
	if fm, ok := m.metrics[f.Key()]; ok {
		return fm
	}
	fm := m.scale(f.Metrics())
	m.metrics[f.Key()] = fm
	return fm
}

func (m *Manager) scale(fm font.Metrics) FontMetrics {
	factor := fixed.Int26_6(m.resolutionFactor)
	return FontMetrics{
		Ascent:     fm.Ascent / factor,
		Descent:    fm.Descent / factor,
		LineGap:    fm.LineGap / factor,
		MaxAdvance: fm.MaxAdvance / factor,
	}
}

// Glyph returns the packed TexturedGlyph for g, rasterizing and packing it
// on first request; later requests for the same (font, glyph id) return
// the memoized entry, using its first caller's advance/bounds as
// authoritative (contextual kerning is not modeled at the atlas layer).
// ok is false for glyphs with no coverage to pack: zero-advance/zero-bounds
// combining marks, space-like glyphs, and bitmap/color glyph formats this
// rasterizer does not decode.
func (m *Manager) Glyph(f font.Font, g font.ShapedGlyph) (TexturedGlyph, bool) {
	key := glyphKey{f.Key(), g.GlyphID}
	if tg, ok := m.glyphs[key]; ok {
		return tg, true
	}
	tg, ok := m.rasterAndPack(f, g)
	if ok {
		m.glyphs[key] = tg
	}
	return tg, ok
}

func (m *Manager) rasterAndPack(f font.Font, g font.ShapedGlyph) (TexturedGlyph, bool) {
	outline, ok := f.RasterGlyph(g.GlyphID)
	if !ok {
		return TexturedGlyph{}, false
	}
	cov, ok := rasterizeOutline(outline)
	if !ok {
		return TexturedGlyph{}, false
	}
	tg, ok := m.pack(cov)
	if !ok {
		return TexturedGlyph{}, false
	}
	factor := fixed.Int26_6(m.resolutionFactor)
	tg.Advance = g.XAdvance / factor
	tg.BearingX = g.Bounds.Min.X / factor
	tg.BearingY = g.Bounds.Min.Y / factor
	return tg, true
}

// pack allocates space for cov on the current sheet (opening a new shelf,
// or a new sheet, as needed) and uploads its coverage with a 2-texel
// transparent border. On allocation failure it retries once against a
// fresh sheet; a second failure is logged once and reported as a drop.
func (m *Manager) pack(cov coverageBitmap) (TexturedGlyph, bool) {
	w := cov.W + 2*glyphBorder
	h := cov.H + 2*glyphBorder
	s, pos, ok := m.allocate(w, h)
	if !ok {
		s, pos, ok = m.allocate(w, h)
		if !ok {
			m.warnings.Warn("atlas-exhausted", "textkit: atlas allocation failed twice, dropping glyph")
			return TexturedGlyph{}, false
		}
	}

	padded := make([]byte, w*h)
	for y := 0; y < cov.H; y++ {
		dstOff := (y+glyphBorder)*w + glyphBorder
		copy(padded[dstOff:dstOff+cov.W], cov.Pix[y*cov.W:(y+1)*cov.W])
	}
	s.tex.Upload(pos, image.Pt(w, h), padded, w)

	// The UV rectangle keeps one texel of the 2-texel border on each side.
	const uvInset = glyphBorder - 1
	sw, sh := float32(s.width), float32(s.height)
	u0 := float32(pos.X+uvInset) / sw
	v0 := float32(pos.Y+uvInset) / sh
	u1 := float32(pos.X+w-uvInset) / sw
	v1 := float32(pos.Y+h-uvInset) / sh
	return TexturedGlyph{
		SheetID: s.id,
		U0:      u0, V0: v0, U1: u1, V1: v1,
		Width:  cov.W,
		Height: cov.H,
	}, true
}

// allocate reserves a w x h rectangle using the shelf/next-line algorithm:
// advance along the current shelf; open a new shelf when a glyph would
// overflow sheet width; allocate a new sheet when a shelf would overflow
// sheet height.
func (m *Manager) allocate(w, h int) (*sheet, image.Point, bool) {
	if len(m.sheets) == 0 {
		if !m.newSheet() {
			return nil, image.Point{}, false
		}
	}
	s := m.sheets[len(m.sheets)-1]
	if s.cursorX+w+shelfSpacing > s.width {
		s.cursorY += s.currentLineHeight + 2*shelfSpacing
		s.cursorX = shelfSpacing
		s.currentLineHeight = 0
	}
	if s.cursorY+h+shelfSpacing > s.height {
		if !m.newSheet() {
			return nil, image.Point{}, false
		}
		s = m.sheets[len(m.sheets)-1]
	}
	pos := image.Pt(s.cursorX, s.cursorY)
	s.cursorX += w + shelfSpacing
	if h > s.currentLineHeight {
		s.currentLineHeight = h
	}
	return s, pos, true
}

func (m *Manager) newSheet() bool {
	tex, err := m.dev.NewTexture(m.sheetWidth, m.sheetHeight, m.minFilter, m.magFilter)
	if err != nil {
		m.warnings.Warn("atlas-new-sheet", "textkit: atlas texture allocation failed: %v", err)
		return false
	}
	m.sheets = append(m.sheets, &sheet{
		id:      len(m.sheets),
		tex:     tex,
		width:   m.sheetWidth,
		height:  m.sheetHeight,
		cursorX: shelfSpacing,
		cursorY: shelfSpacing,
	})
	return true
}

// Digits returns the ten memoized digit glyphs ('0'..'9') for f, each
// carrying the atlas-packed coverage for its own shape but sharing the
// advance of '0'; digits narrower than '0' are centered in that advance.
func (m *Manager) Digits(f font.Font) [10]TexturedGlyph {
	if t, ok := m.digitTables[f.Key()]; ok {
		return t
	}
	var shaped [10]font.ShapedGlyph
	for i := 0; i < 10; i++ {
		out := f.Shape([]rune{rune('0' + i)}, 0, 1, font.LTR)
		if len(out.Glyphs) > 0 {
			shaped[i] = out.Glyphs[0]
		}
	}
	zeroAdvance := shaped[0].XAdvance
	zeroWidth := shaped[0].Bounds.Max.X - shaped[0].Bounds.Min.X

	var table [10]TexturedGlyph
	factor := fixed.Int26_6(m.resolutionFactor)
	for i := 0; i < 10; i++ {
		tg, ok := m.Glyph(f, shaped[i])
		if !ok {
			tg = TexturedGlyph{}
		}
		tg.Advance = zeroAdvance / factor
		if width := shaped[i].Bounds.Max.X - shaped[i].Bounds.Min.X; width < zeroWidth {
			tg.BearingX += (zeroWidth - width) / 2 / factor
		}
		table[i] = tg
	}
	m.digitTables[f.Key()] = table
	return table
}
