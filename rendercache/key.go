// SPDX-License-Identifier: Unlicense OR MIT

// Package rendercache implements the Render-Node Cache: a digit-insensitive,
// capacity- and TTL-bounded cache of RenderNode values, with construction
// pinned to a single render-owner goroutine and single-flight coalescing of
// duplicate in-flight keys.
package rendercache

import (
	"hash/maphash"

	"github.com/inkglyph/textkit/style"
)

const sectionRune = '§'

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// cacheKey is a (text, style-geometry) pair under digit-insensitive
// equality: two keys match iff their geometry bits are equal and their
// texts are equal under the rule that an ASCII digit not immediately
// preceded by a formatting-code section sign may differ from its
// counterpart, as long as both sides are also ASCII digits there.
type cacheKey struct {
	text         []rune
	geometryBits uint64
	hash         uint64
}

func newCacheKey(text []rune, st style.Style) cacheKey {
	bits := st.GeometryBits()
	return cacheKey{text: text, geometryBits: bits, hash: hashKey(text, bits)}
}

// hashKey must agree with keysEqual: positions eligible to differ (ASCII
// digits not preceded by an unescaped §) hash as a single sentinel value
// instead of their own rune.
func hashKey(text []rune, geometryBits uint64) uint64 {
	var h maphash.Hash
	h.SetSeed(processSeed)
	var buf [4]byte
	for i, r := range text {
		if isASCIIDigit(r) && !(i > 0 && text[i-1] == sectionRune) {
			r = '0'
		}
		buf[0] = byte(r)
		buf[1] = byte(r >> 8)
		buf[2] = byte(r >> 16)
		buf[3] = byte(r >> 24)
		h.Write(buf[:])
	}
	h.Write([]byte{
		byte(geometryBits), byte(geometryBits >> 8), byte(geometryBits >> 16), byte(geometryBits >> 24),
		byte(geometryBits >> 32), byte(geometryBits >> 40), byte(geometryBits >> 48), byte(geometryBits >> 56),
	})
	return h.Sum64()
}

var processSeed = maphash.MakeSeed()

// keysEqual implements the cache's digit-insensitive text comparison:
// scanning positions in lockstep, a mismatch is only permitted when both
// characters are ASCII digits and the position is not immediately
// preceded by an unescaped section sign.
func keysEqual(a, b cacheKey) bool {
	if a.geometryBits != b.geometryBits {
		return false
	}
	if len(a.text) != len(b.text) {
		return false
	}
	for i := range a.text {
		if a.text[i] == b.text[i] {
			continue
		}
		if i > 0 && a.text[i-1] == sectionRune {
			return false
		}
		if !isASCIIDigit(a.text[i]) || !isASCIIDigit(b.text[i]) {
			return false
		}
	}
	return true
}
