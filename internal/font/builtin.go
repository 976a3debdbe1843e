package font

import (
	"sync"

	"golang.org/x/image/font/basicfont"
)

var (
	builtinOnce sync.Once
	builtin     *Font
)

// Builtin returns a 128-glyph ASCII font rendered from the 7x13 face in
// golang.org/x/image. It is used whenever no PSF2 file is configured.
func Builtin() *Font {
	builtinOnce.Do(func() {
		face := basicfont.Face7x13
		glyphs := make([]Glyph, 128)
		for r := range glyphs {
			g := make(Glyph, face.Height)
			for y := range g {
				g[y] = make([]uint8, GlyphWidth)
			}
			if idx, ok := faceIndex(face, rune(r)); ok {
				for y := 0; y < face.Height; y++ {
					for x := 0; x < face.Width && x < GlyphWidth; x++ {
						_, _, _, a := face.Mask.At(x, idx*face.Height+y).RGBA()
						if a >= 0x8000 {
							g[y][x] = 1
						}
					}
				}
			}
			glyphs[r] = g
		}

		f, err := Load(Encode(face.Height, glyphs))
		if err != nil {
			panic("font: builtin font does not decode: " + err.Error())
		}
		builtin = f
	})
	return builtin
}

// faceIndex returns the mask index of r in face, or false when the face has
// no glyph for it.
func faceIndex(face *basicfont.Face, r rune) (int, bool) {
	for _, rg := range face.Ranges {
		if r >= rg.Low && r < rg.High {
			return int(r-rg.Low) + rg.Offset, true
		}
	}
	return 0, false
}
