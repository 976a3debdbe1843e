// Package demos holds the programs shipped with termfx. Each demo registers
// itself with the registry and expresses its behavior purely as engine
// callbacks over a mutex-guarded state.
package demos

import (
	"github.com/vovakirdan/termfx/internal/gfx"
)

// planeSprite is the fallback sprite when no image asset is configured.
// '#' is the body, 'o' the cockpit, '=' the wing and '.' transparent.
var planeSprite = []string{
	"..#.......",
	"..##......",
	"###==#####",
	"#####o####",
	"..##=##...",
	"..#.......",
}

func spriteFromStrings(rows []string, palette map[byte]gfx.RGB) gfx.Image {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	img := gfx.NewImage(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if c, ok := palette[r[x]]; ok {
				img[y][x] = gfx.Texel{Color: c, Opaque: true}
			}
		}
	}
	return img
}

// skyGradient fills fb with a vertical gradient from top to bottom.
func skyGradient(fb *gfx.Framebuffer, top, bottom gfx.RGB) {
	bands := gfx.Gradient(top, bottom, fb.Height())
	for y, c := range bands {
		fb.Rectangle(0, y, fb.Width(), y+1, c)
	}
}
