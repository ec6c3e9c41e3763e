// SPDX-License-Identifier: Unlicense OR MIT

// Package textkit lays out styled text into cacheable, GPU-drawable
// render nodes: it resolves §-formatting codes, segments text into
// bidi/style/font runs, shapes each run, rasterizes and atlas-packs the
// glyphs it needs, and assembles the result into a RenderNode a caller
// draws with its own vertex sink.
package textkit

import (
	"math/rand"
	"time"

	"golang.org/x/image/math/fixed"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/bidi"
	"github.com/inkglyph/textkit/f32"
	"github.com/inkglyph/textkit/font"
	"github.com/inkglyph/textkit/rendercache"
	"github.com/inkglyph/textkit/rendernode"
	"github.com/inkglyph/textkit/shape"
	"github.com/inkglyph/textkit/style"
)

// Renderer wires the font registry, glyph atlas, and render-node cache
// into the text-layout pipeline described by this module. A Renderer's
// Lookup-triggered builds run on its own render-owner goroutine; Layout
// is safe to call concurrently from any goroutine.
type Renderer struct {
	opts     Options
	registry *font.Registry
	atlas    *atlas.Manager
	cache    *rendercache.Cache
	rng      *rand.Rand
	rngMu    chan struct{} // 1-buffered mutex: *rand.Rand is not goroutine-safe
}

// NewRenderer constructs a Renderer. dev backs the atlas's GPU textures;
// collection is every font known to the registry (see font.NewRegistry).
func NewRenderer(opts Options, collection []font.FontFace, dev atlas.Device) (*Renderer, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	min, mag := opts.filters()
	r := &Renderer{
		opts:     opts,
		registry: font.NewRegistry(opts.PreferredFontNames, collection),
		atlas:    atlas.NewManager(dev, opts.AtlasWidth, opts.AtlasHeight, opts.ResolutionFactor, min, mag),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		rngMu:    make(chan struct{}, 1),
	}
	r.rngMu <- struct{}{}
	r.cache = rendercache.NewCache(opts.CacheCapacity, opts.CacheTTL, r.build)
	return r, nil
}

// ptSize is the oversampled point size shaping and rasterization run at;
// TexturedGlyph advances/bearings and FontMetrics are divided by
// ResolutionFactor to return from it to DefaultFontSize's logical scale.
func (r *Renderer) ptSize() fixed.Int26_6 {
	return fixed.Int26_6(r.opts.DefaultFontSize.V*64) * fixed.Int26_6(r.opts.ResolutionFactor)
}

// Layout returns the RenderNode for (text, st), building and caching it
// on first request. text may carry §-formatting codes (see package
// style); st is the style in effect before any formatting codes apply.
func (r *Renderer) Layout(text string, st style.Style) *rendernode.RenderNode {
	return r.cache.Lookup([]rune(text), st)
}

// RunOnRenderOwner runs fn on the render owner goroutine, blocking until
// it completes. Use it to warm the registry or atlas outside of a Layout
// call while still respecting the render-owner-confinement of their
// state.
func (r *Renderer) RunOnRenderOwner(fn func()) {
	r.cache.RunOnRenderOwner(fn)
}

// Close releases the Renderer's render-owner goroutine. Outstanding
// Layout calls must complete first.
func (r *Renderer) Close() {
	r.cache.Close()
}

// build implements the C→D→E→F pipeline: resolve formatting codes,
// segment into runs, shape each run, assemble the result. It runs only on
// the render owner (rendercache.Cache guarantees this), so registry and
// atlas mutation here needs no synchronization.
func (r *Renderer) build(rawText []rune, st style.Style) *rendernode.RenderNode {
	stripped, changes := style.Resolve(string(rawText), st)
	ptSize := r.ptSize()

	runs := bidi.Segment(stripped, changes, r.registry, ptSize)
	var records []rendernode.GlyphRecord
	var pos fixed.Int26_6
	for _, run := range runs {
		recs, advance := shape.Shape(stripped, run, pos, r.atlas)
		records = append(records, recs...)
		pos += advance
	}

	node := rendernode.Assemble(records, changes, pos)
	if !r.opts.FractionalMetrics {
		roundToPixelGrid(node)
	}
	return node
}

func roundToPixelGrid(n *rendernode.RenderNode) {
	for i := range n.Glyphs {
		n.Glyphs[i].OffsetX = fixed.I(n.Glyphs[i].OffsetX.Round())
	}
	for i := range n.Effects {
		n.Effects[i].X0 = fixed.I(n.Effects[i].X0.Round())
		n.Effects[i].X1 = fixed.I(n.Effects[i].X1.Round())
	}
	n.Advance = fixed.I(n.Advance.Round())
}

// Draw writes node's glyphs and effects to sink with the given pen
// origin and base paint color/alpha, resolving Digit records against
// source (the original, unstripped string Layout was called with) and
// Random records against this Renderer's shared random source. Safe for
// concurrent use.
func (r *Renderer) Draw(node *rendernode.RenderNode, sink rendernode.VertexSink, source string, pen f32.Point, base style.Color, alpha float32) {
	<-r.rngMu
	defer func() { r.rngMu <- struct{}{} }()
	node.Draw(sink, []rune(source), pen, base, alpha, r.rng)
}
