package gfx

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque 24-bit color. The framebuffer has no alpha channel.
type RGB struct {
	R, G, B uint8
}

// Predefined colors.
var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// ANSI is one of the 16 fixed terminal colors used by the tile backend.
type ANSI uint8

const (
	ANSIBlack ANSI = iota
	ANSIRed
	ANSIGreen
	ANSIYellow
	ANSIBlue
	ANSIMagenta
	ANSICyan
	ANSIWhite
	ANSIBrightBlack
	ANSIBrightRed
	ANSIBrightGreen
	ANSIBrightYellow
	ANSIBrightBlue
	ANSIBrightMagenta
	ANSIBrightCyan
	ANSIBrightWhite
)

// ansiPalette holds the xterm default RGB value of each ANSI color.
var ansiPalette = [16]RGB{
	{0, 0, 0},
	{205, 0, 0},
	{0, 205, 0},
	{205, 205, 0},
	{0, 0, 238},
	{205, 0, 205},
	{0, 205, 205},
	{229, 229, 229},
	{127, 127, 127},
	{255, 0, 0},
	{0, 255, 0},
	{255, 255, 0},
	{92, 92, 255},
	{255, 0, 255},
	{0, 255, 255},
	{255, 255, 255},
}

// RGB returns the palette value of the color. Drawing with it on a tile
// framebuffer reproduces the color exactly.
func (a ANSI) RGB() RGB {
	return ansiPalette[a&15]
}

// FgCode returns the SGR foreground code (30-37, 90-97).
func (a ANSI) FgCode() int {
	if a < 8 {
		return 30 + int(a)
	}
	return 90 + int(a-8)
}

// BgCode returns the SGR background code (40-47, 100-107).
func (a ANSI) BgCode() int {
	if a < 8 {
		return 40 + int(a)
	}
	return 100 + int(a-8)
}

// ansiLab holds each palette color in CIE L*a*b*.
var ansiLab = func() (lab [16][3]float64) {
	for i, p := range ansiPalette {
		l, a, b := p.colorful().Lab()
		lab[i] = [3]float64{l, a, b}
	}
	return lab
}()

// NearestANSI maps c to the ANSI color with the smallest CIE L*a*b*
// distance, which tracks perceived difference better than RGB distance.
func NearestANSI(c RGB) ANSI {
	l, a, b := c.colorful().Lab()
	best, bestDist := ANSIBlack, -1.0
	for i, p := range ansiLab {
		dl, da, db := l-p[0], a-p[1], b-p[2]
		d := dl*dl + da*da + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = ANSI(i), d
		}
	}
	return best
}

// Blend interpolates from a to b in CIE L*a*b* space; t is clamped to [0, 1].
func Blend(a, b RGB, t float64) RGB {
	t = max(0, min(1, t))
	return fromColorful(a.colorful().BlendLab(b.colorful(), t).Clamped())
}

// Gradient returns n colors evenly spaced from a to b, inclusive.
func Gradient(a, b RGB, n int) []RGB {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []RGB{a}
	}
	out := make([]RGB, n)
	for i := range out {
		out[i] = Blend(a, b, float64(i)/float64(n-1))
	}
	return out
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}
