// SPDX-License-Identifier: Unlicense OR MIT

package font

import (
	"bytes"
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/go-text/typesetting/font"

	"github.com/inkglyph/textkit/internal/logonce"
)

// FontFace names a physical Font for the purposes of preferred-font
// resolution and logging.
type FontFace struct {
	Name string
	Font Font
}

// variantKey identifies a memoized derived Font.
type variantKey struct {
	base    Font
	variant Variant
	ptSize  fixed.Int26_6
}

// Registry resolves code points to fonts and memoizes derived variants.
// Registry is render-owner-confined per the concurrency model: only the
// render owner may call Lookup or Derive.
type Registry struct {
	// preferred is searched first, in order. It grows when Lookup finds a
	// supporting font in system and promotes it, so later lookups for
	// characters from the same script hit the faster path.
	preferred []Font
	// system is the remaining registered collection, searched in
	// registration order when preferred has no match.
	system []Font

	variants map[variantKey]Font
	nextKey  Key

	warnings logonce.Logger
}

// NewRegistry resolves preferredNames against collection (matched by
// FontFace.Name, case-sensitive, in the order preferredNames lists them).
// Names with no match are logged once and skipped. Every collection entry
// not claimed by a preferred name becomes part of the system fallback
// list, in the order collection lists them.
func NewRegistry(preferredNames []string, collection []FontFace) *Registry {
	r := &Registry{
		variants: make(map[variantKey]Font),
	}
	claimed := make(map[int]bool)
	for _, name := range preferredNames {
		idx := -1
		for i, f := range collection {
			if !claimed[i] && f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			r.warnings.Warn("missing-font:"+name, "textkit: preferred font %q not found, skipping", name)
			continue
		}
		claimed[idx] = true
		r.preferred = append(r.preferred, collection[idx].Font)
	}
	for i, f := range collection {
		if !claimed[i] {
			r.system = append(r.system, f.Font)
		}
	}
	return r
}

// Lookup returns the first preferred font supporting cp. Failing that, it
// walks the system list in registration order, promoting the first
// supporting font it finds to the end of preferred so later lookups for
// the same script are faster. Failing that, it returns the first
// preferred font as a fallback so the caller can draw the unknown-glyph
// image; Lookup never returns nil as long as at least one font was
// registered.
func (r *Registry) Lookup(cp rune) Font {
	for _, f := range r.preferred {
		if f.Supports(cp) {
			return f
		}
	}
	for _, f := range r.system {
		if f.Supports(cp) {
			r.preferred = append(r.preferred, f)
			return f
		}
	}
	if len(r.preferred) > 0 {
		return r.preferred[0]
	}
	if len(r.system) > 0 {
		return r.system[0]
	}
	return nil
}

// Derive returns the memoized (variant, ptSize) variant of base, deriving
// and assigning it a new stable Key the first time it is requested.
func (r *Registry) Derive(base Font, variant Variant, ptSize fixed.Int26_6) Font {
	key := variantKey{base: base, variant: variant, ptSize: ptSize}
	if f, ok := r.variants[key]; ok {
		return f
	}
	derived := base.Derive(variant, ptSize)
	r.nextKey++
	switch d := derived.(type) {
	case *face:
		d.key = r.nextKey
	default:
		// Non-*face implementations (e.g. test doubles) are expected to
		// report their own Key(); Registry still tracks the assignment
		// order via nextKey for its own bookkeeping.
	}
	r.variants[key] = derived
	return derived
}

// Collection returns every font currently known to the registry, preferred
// fonts first in search order followed by the remaining system fonts.
func (r *Registry) Collection() []Font {
	out := make([]Font, 0, len(r.preferred)+len(r.system))
	out = append(out, r.preferred...)
	out = append(out, r.system...)
	return out
}

// Parse parses raw OpenType/TrueType font data into a Font usable with a
// Registry.
func Parse(raw []byte) (Font, error) {
	tf, err := font.ParseTTF(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("font: failed parsing font data: %w", err)
	}
	return newFace(tf), nil
}
