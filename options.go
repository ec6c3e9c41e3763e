// SPDX-License-Identifier: Unlicense OR MIT

package textkit

import (
	"time"

	"github.com/inkglyph/textkit/atlas"
	"github.com/inkglyph/textkit/rendercache"
	"github.com/inkglyph/textkit/unit"
)

// Options is this module's enumerated configuration surface.
type Options struct {
	// PreferredFontNames is searched in order for code-point support
	// before falling back to the rest of the registered collection.
	PreferredFontNames []string
	// DefaultFontSize is the point size shaping and the atlas operate
	// at, before ResolutionFactor oversampling.
	DefaultFontSize unit.Value
	// AntiAlias enables text anti-aliasing; it selects the atlas
	// sheets' min/mag filter (linear when true, nearest when false).
	AntiAlias bool
	// FractionalMetrics enables sub-pixel glyph positioning. When
	// false, every glyph and effect span offset is rounded to the
	// nearest whole logical pixel.
	FractionalMetrics bool
	// Mipmap and MipmapLevel enable and bound the atlas sheets' mip
	// chain. Reserved for a Device implementation that honors it;
	// textkit validates the power-of-two precondition regardless.
	Mipmap      bool
	MipmapLevel uint8
	// ResolutionFactor is the shaping/rasterization oversampling ratio:
	// 1, 2, or 4.
	ResolutionFactor int
	// CacheCapacity and CacheTTL bound the render-node cache.
	CacheCapacity int
	CacheTTL      time.Duration
	// AtlasWidth and AtlasHeight size every atlas sheet. Must be powers
	// of two when Mipmap is set.
	AtlasWidth, AtlasHeight int
}

func (o Options) withDefaults() Options {
	if o.DefaultFontSize.V == 0 {
		o.DefaultFontSize = unit.Sp(16)
	}
	if o.ResolutionFactor == 0 {
		o.ResolutionFactor = 2
	}
	if o.CacheCapacity == 0 {
		o.CacheCapacity = rendercache.DefaultCapacity
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = rendercache.DefaultTTL
	}
	if o.AtlasWidth == 0 {
		o.AtlasWidth = 1024
	}
	if o.AtlasHeight == 0 {
		o.AtlasHeight = 1024
	}
	return o
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (o Options) validate() error {
	if o.Mipmap && (!isPowerOfTwo(o.AtlasWidth) || !isPowerOfTwo(o.AtlasHeight)) {
		return errMipmapDimensions
	}
	switch o.ResolutionFactor {
	case 1, 2, 4:
	default:
		return errResolutionFactor
	}
	return nil
}

func (o Options) filters() (min, mag atlas.TextureFilter) {
	if o.AntiAlias {
		return atlas.FilterLinear, atlas.FilterLinear
	}
	return atlas.FilterNearest, atlas.FilterNearest
}

type configError string

func (e configError) Error() string { return string(e) }

const (
	errMipmapDimensions = configError("textkit: mipmapped atlas dimensions must be powers of two")
	errResolutionFactor = configError("textkit: resolution factor must be 1, 2, or 4")
)
