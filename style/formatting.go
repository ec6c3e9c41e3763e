// SPDX-License-Identifier: Unlicense OR MIT

package style

import "unicode/utf8"

// escapeRune is the formatting-code prefix, U+00A7 SECTION SIGN.
const escapeRune = '§'

// StyleChange records the style in effect starting at a particular
// position in both the original (with formatting codes) and stripped
// (formatting codes removed) text. StyleChange lists are sorted by
// StrippedIndex, and the record at index 0 always holds the effective
// style at offset 0.
type StyleChange struct {
	OriginalIndex int
	StrippedIndex int
	Style         Style
}

// classifier identifies what a single formatting-code letter does.
type classifier uint8

const (
	classifierNone classifier = iota
	classifierColor
	classifierObfuscated
	classifierBold
	classifierStrikethrough
	classifierUnderline
	classifierItalic
	classifierReset
)

// classifierTable maps the six non-color classifier runes (case folded to
// lowercase) to their effect; the sixteen color classifiers (0-9, a-f) are
// recognized by colorIndex, for 22 in all. Unknown classifiers are stripped
// with no style change emitted.
var classifierTable = map[rune]classifier{
	'k': classifierObfuscated,
	'l': classifierBold,
	'm': classifierStrikethrough,
	'n': classifierUnderline,
	'o': classifierItalic,
	'r': classifierReset,
}

func colorIndex(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, true
	}
	return 0, false
}

func foldASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// Resolve scans raw for §-prefixed formatting codes, returning the text
// with all recognized (and unrecognized) escapes stripped, and the sorted
// list of style changes aligned to indices into the stripped text.
//
// Resolve operates on code points: OriginalIndex and StrippedIndex are
// rune offsets, not byte offsets, so that every StyleChange position
// indexes an actual code point boundary.
func Resolve(raw string, def Style) (stripped []rune, changes []StyleChange) {
	runes := decodeRunes(raw)
	stripped = make([]rune, 0, len(runes))
	changes = []StyleChange{{OriginalIndex: 0, StrippedIndex: 0, Style: def}}

	current := def
	pal := def.Palette
	if pal == nil {
		pal = &DefaultPalette
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == escapeRune && i+1 < len(runes) {
			code := foldASCII(runes[i+1])
			if idx, ok := colorIndex(code); ok {
				current = Style{
					Color:         pal[idx],
					ColorIsSet:    true,
					Bold:          def.Bold,
					Italic:        def.Italic,
					Underline:     def.Underline,
					Strikethrough: def.Strikethrough,
					Obfuscated:    def.Obfuscated,
					Palette:       def.Palette,
				}
			} else if cls, ok := classifierTable[code]; ok {
				switch cls {
				case classifierReset:
					current = def
				case classifierObfuscated:
					current.Obfuscated = true
				case classifierBold:
					current.Bold = true
				case classifierStrikethrough:
					current.Strikethrough = true
				case classifierUnderline:
					current.Underline = true
				case classifierItalic:
					current.Italic = true
				}
			} else {
				// Unknown classifier: strip both runes, no style change.
				i++
				continue
			}
			changes = append(changes, StyleChange{
				OriginalIndex: i,
				StrippedIndex: len(stripped),
				Style:         current,
			})
			i++
			continue
		}
		stripped = append(stripped, r)
	}
	return stripped, changes
}

// decodeRunes decodes raw into code points. Invalid UTF-8 bytes (the Go
// analog of a malformed/lone surrogate) are passed through as one rune per
// byte holding that byte's value, rather than being collapsed into a
// single U+FFFD, so that rune indices still correspond 1:1 with a
// recoverable position in the source bytes.
func decodeRunes(raw string) []rune {
	runes := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); {
		r, size := decodeRuneAt(raw, i)
		runes = append(runes, r)
		i += size
	}
	return runes
}

func decodeRuneAt(s string, i int) (rune, int) {
	b := s[i]
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	// Fall back to the standard decoder; on failure (lone/invalid byte)
	// pass the raw byte value through as its own one-byte "rune" instead
	// of collapsing it into U+FFFD, preserving a stable index mapping.
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && size <= 1 {
		return rune(b), 1
	}
	return r, size
}
