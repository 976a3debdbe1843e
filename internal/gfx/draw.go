package gfx

import (
	"math"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/font"
)

// lineGap is the vertical space between text lines, in pixels.
const lineGap = 2

// Line plots a Bresenham segment and returns its points in drawing order.
// Points outside the framebuffer are clipped.
func (fb *Framebuffer) Line(x1, y1, x2, y2 int, c RGB) []core.Point {
	points := Bresenham(x1, y1, x2, y2)
	for _, p := range points {
		fb.plot(p.X, p.Y, c)
	}
	return points
}

// Circle outlines a circle by sampling 360 one-degree angles and rounding
// each to the nearest pixel. Large radii leave gaps.
func (fb *Framebuffer) Circle(x, y, radius int, c RGB) {
	r := float64(radius)
	for deg := 0; deg < 360; deg++ {
		theta := float64(deg) * math.Pi / 180
		px := int(math.Round(float64(x) + r*math.Cos(theta)))
		py := int(math.Round(float64(y) + r*math.Sin(theta)))
		fb.plot(px, py, c)
	}
}

// Triangle outlines the triangle p1, p2, p3.
func (fb *Framebuffer) Triangle(p1, p2, p3 core.Point, c RGB) {
	fb.Line(p1.X, p1.Y, p2.X, p2.Y, c)
	fb.Line(p2.X, p2.Y, p3.X, p3.Y, c)
	fb.Line(p3.X, p3.Y, p1.X, p1.Y, c)
}

// Rectangle fills the half-open region [x0, x1) × [y0, y1), clipped to the
// framebuffer.
func (fb *Framebuffer) Rectangle(x0, y0, x1, y1 int, c RGB) {
	r := core.NewRect(x0, y0, x1-x0, y1-y0).Intersect(fb.bounds())
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.Bottom(); y++ {
		row := fb.current[y*fb.width : (y+1)*fb.width]
		for x := r.X; x < r.Right(); x++ {
			row[x] = c
		}
	}
}

// FillRect fills r.
func (fb *Framebuffer) FillRect(r core.Rect, c RGB) {
	fb.Rectangle(r.X, r.Y, r.Right(), r.Bottom(), c)
}

// ImageOpts controls how Image composites a picture.
type ImageOpts struct {
	// MirrorH reverses row order (top-to-bottom flip).
	MirrorH bool
	// MirrorV reverses pixel order within each row (left-to-right flip).
	MirrorV bool
	// Rotate swaps the axes when plotting.
	Rotate bool
	// Override, if set, replaces the color of every opaque texel.
	Override *RGB
}

// Image composites img with its top-left corner at (x, y). Transparent texels
// leave the framebuffer untouched and destinations outside it are skipped.
func (fb *Framebuffer) Image(x, y int, img Image, opts ImageOpts) {
	h := len(img)
	for iy := range img {
		sy := iy
		if opts.MirrorH {
			sy = h - 1 - iy
		}
		src := img[sy]
		w := len(src)
		for ix := range src {
			sx := ix
			if opts.MirrorV {
				sx = w - 1 - ix
			}
			t := src[sx]
			if !t.Opaque {
				continue
			}
			c := t.Color
			if opts.Override != nil {
				c = *opts.Override
			}
			if opts.Rotate {
				fb.plot(x+iy, y+ix, c)
			} else {
				fb.plot(x+ix, y+iy, c)
			}
		}
	}
}

// Text draws s with f at (x, y). Letters are folded to lowercase before the
// glyph lookup, every character advances 8 pixels, and '\n' starts a new line
// glyphHeight+2 pixels lower. Wide runes render as '?'.
func (fb *Framebuffer) Text(x, y int, c RGB, f *font.Font, s string) {
	if f == nil {
		return
	}
	step := f.GlyphHeight() + lineGap
	offset, line := 0, 0
	for _, r := range s {
		if r == '\n' {
			offset = 0
			line++
			continue
		}
		r = unicode.ToLower(r)
		if runewidth.RuneWidth(r) > 1 {
			r = '?'
		}
		if g, ok := f.Glyph(r); ok {
			ox := x + offset*font.GlyphWidth
			oy := y + line*step
			for gy, bits := range g {
				for gx, bit := range bits {
					if bit == 1 {
						fb.plot(ox+gx, oy+gy, c)
					}
				}
			}
		}
		offset++
	}
}

// plot is SetPixel with silent clipping; primitives may legitimately reach
// past the edges.
func (fb *Framebuffer) plot(x, y int, c RGB) {
	if fb.InBounds(x, y) {
		fb.current[y*fb.width+x] = c
	}
}
