// SPDX-License-Identifier: Unlicense OR MIT

// Package gofont exposes the embedded Go fonts as a default font
// collection, for callers that register no preferred fonts of their own.
package gofont

import (
	"fmt"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inkglyph/textkit/font"
)

var (
	once       sync.Once
	collection []font.FontFace
)

// Collection returns the embedded Go fonts as a font.FontFace slice,
// parsing them on first use.
func Collection() []font.FontFace {
	once.Do(func() {
		collection = []font.FontFace{
			register("Go", goregular.TTF),
			register("Go Italic", goitalic.TTF),
			register("Go Bold", gobold.TTF),
			register("Go Bold Italic", gobolditalic.TTF),
			register("Go Mono", gomono.TTF),
		}
	})
	return collection
}

func register(name string, ttf []byte) font.FontFace {
	f, err := font.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("gofont: failed to parse embedded font %q: %v", name, err))
	}
	return font.FontFace{Name: name, Font: f}
}
