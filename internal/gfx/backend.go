package gfx

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Backend turns a pixel grid into a terminal byte stream.
// The two backends differ in how many pixel rows one character cell carries.
type Backend interface {
	// Name identifies the backend in configuration ("halfblock", "tile").
	Name() string

	// RowsPerCell is the number of pixel rows one terminal row displays.
	RowsPerCell() int

	// Encode writes pix (row-major, w×h) without clearing or flushing.
	Encode(out *bufio.Writer, pix []RGB, w, h int)
}

// BackendByName returns the backend registered under name.
func BackendByName(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "halfblock", "half-block":
		return HalfBlock{}, nil
	case "tile":
		return Tile{}, nil
	default:
		return nil, fmt.Errorf("gfx: unknown backend %q (want halfblock or tile)", name)
	}
}

// HalfBlock is the 24-bit truecolor backend. Each cell shows two pixels: the
// upper one as background, the lower one as the foreground of '▄'.
type HalfBlock struct{}

// Name implements Backend.
func (HalfBlock) Name() string { return "halfblock" }

// RowsPerCell implements Backend.
func (HalfBlock) RowsPerCell() int { return 2 }

// Encode implements Backend.
func (HalfBlock) Encode(out *bufio.Writer, pix []RGB, w, h int) {
	var num [3]byte
	for y := 0; y+1 < h; y += 2 {
		top := pix[y*w : (y+1)*w]
		bottom := pix[(y+1)*w : (y+2)*w]
		for x := 0; x < w; x++ {
			out.WriteString("\x1b[38;2;")
			writeRGB(out, num[:0], bottom[x])
			out.WriteString("m\x1b[48;2;")
			writeRGB(out, num[:0], top[x])
			out.WriteString("m▄")
		}
	}
}

// Tile is the 16-color backend: one pixel per cell, drawn as a space on the
// nearest ANSI background color.
type Tile struct{}

// Name implements Backend.
func (Tile) Name() string { return "tile" }

// RowsPerCell implements Backend.
func (Tile) RowsPerCell() int { return 1 }

// Encode implements Backend. Runs of one color reuse the previous lookup.
func (Tile) Encode(out *bufio.Writer, pix []RGB, w, h int) {
	var num [3]byte
	prefix := "\x1b[0;" + strconv.Itoa(ANSIBlack.FgCode()) + ";"
	last, code := RGB{}, -1
	for _, c := range pix[:w*h] {
		if code < 0 || c != last {
			last, code = c, NearestANSI(c).BgCode()
		}
		out.WriteString(prefix)
		out.Write(strconv.AppendInt(num[:0], int64(code), 10))
		out.WriteString("m ")
	}
}

func writeRGB(out *bufio.Writer, buf []byte, c RGB) {
	out.Write(strconv.AppendUint(buf, uint64(c.R), 10))
	out.WriteByte(';')
	out.Write(strconv.AppendUint(buf, uint64(c.G), 10))
	out.WriteByte(';')
	out.Write(strconv.AppendUint(buf, uint64(c.B), 10))
}
