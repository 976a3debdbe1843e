// Package font decodes PSF2 console bitmap fonts into glyph tables the
// framebuffer can draw with.
//
// Only fonts whose glyphs are at most 8 pixels wide are supported: every
// glyph row is exactly one byte, most significant bit on the left. Glyphs are
// addressed directly by code point; the optional Unicode mapping table that
// follows some PSF2 fonts is ignored.
package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Magic is the fixed 4-byte signature every PSF2 font starts with.
var Magic = [4]byte{0x72, 0xB5, 0x4A, 0x86}

// HeaderSize is the size of the fixed PSF2 header in bytes.
const HeaderSize = 32

// GlyphWidth is the only glyph width this decoder handles.
const GlyphWidth = 8

var (
	// ErrHeaderMismatch is returned when the data does not start with Magic.
	ErrHeaderMismatch = errors.New("font: header magic does not match, is this a psf2 font?")

	// ErrTruncated is returned when the header or glyph table is shorter than declared.
	ErrTruncated = errors.New("font: data is truncated")

	// ErrUnsupportedWidth is returned for glyphs wider than GlyphWidth.
	ErrUnsupportedWidth = errors.New("font: glyphs wider than 8 pixels are not supported")

	// ErrBadHeader is returned when the glyph geometry is inconsistent: a zero
	// height, or fewer bytes per glyph than rows.
	ErrBadHeader = errors.New("font: inconsistent glyph geometry in header")
)

// Header mirrors the on-disk PSF2 header. All fields after Magic are
// little-endian uint32 values.
type Header struct {
	Magic         [4]byte
	Version       uint32
	HeaderSize    uint32
	Flags         uint32
	GlyphCount    uint32
	GlyphByteSize uint32
	GlyphHeight   uint32
	GlyphWidth    uint32
}

// Glyph is a decoded glyph bitmap: one row per glyph byte, each row holding
// GlyphWidth values of 0 or 1. A 1 means "plot".
type Glyph [][]uint8

// Font is a loaded glyph table. It is read-only after Load and safe to share
// between goroutines.
type Font struct {
	Header Header

	data []byte

	mu     sync.Mutex
	glyphs []Glyph // decoded on first use, nil until then
}

// Load parses a PSF2 font from raw bytes.
// The magic is checked before anything else is parsed.
func Load(raw []byte) (*Font, error) {
	if len(raw) < len(Magic) || [4]byte(raw[:4]) != Magic {
		return nil, ErrHeaderMismatch
	}
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(raw))
	}

	le := binary.LittleEndian
	h := Header{
		Magic:         Magic,
		Version:       le.Uint32(raw[0x04:0x08]),
		HeaderSize:    le.Uint32(raw[0x08:0x0c]),
		Flags:         le.Uint32(raw[0x0c:0x10]),
		GlyphCount:    le.Uint32(raw[0x10:0x14]),
		GlyphByteSize: le.Uint32(raw[0x14:0x18]),
		GlyphHeight:   le.Uint32(raw[0x18:0x1c]),
		GlyphWidth:    le.Uint32(raw[0x1c:0x20]),
	}

	if h.GlyphWidth > GlyphWidth {
		return nil, fmt.Errorf("%w: width is %d", ErrUnsupportedWidth, h.GlyphWidth)
	}

	// One byte per row; bytes past GlyphHeight are padding.
	if h.GlyphHeight == 0 || h.GlyphByteSize < h.GlyphHeight {
		return nil, fmt.Errorf("%w: %d bytes per glyph for %d rows", ErrBadHeader, h.GlyphByteSize, h.GlyphHeight)
	}

	table := uint64(h.GlyphCount) * uint64(h.GlyphByteSize)
	if uint64(len(raw)-HeaderSize) < table {
		return nil, fmt.Errorf("%w: glyph table needs %d bytes, have %d", ErrTruncated, table, len(raw)-HeaderSize)
	}

	// GlyphByteSize >= 1, so GlyphCount <= len(data).
	return &Font{
		Header: h,
		data:   raw[HeaderSize : HeaderSize+int(table)],
		glyphs: make([]Glyph, h.GlyphCount),
	}, nil
}

// LoadFile reads and parses a PSF2 font file.
func LoadFile(path string) (*Font, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: cannot read %s: %w", path, err)
	}
	f, err := Load(raw)
	if err != nil {
		return nil, fmt.Errorf("font: cannot load %s: %w", path, err)
	}
	return f, nil
}

// GlyphHeight returns the height of every glyph in pixels.
func (f *Font) GlyphHeight() int {
	return int(f.Header.GlyphHeight)
}

// GlyphCount returns the number of glyphs in the table.
func (f *Font) GlyphCount() int {
	return int(f.Header.GlyphCount)
}

// Glyph returns the bitmap for code point r: GlyphHeight rows of GlyphWidth
// bits. It reports false when r is outside the glyph table.
// Glyphs are decoded on first use and kept; callers must not modify them.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if r < 0 || uint32(r) >= f.Header.GlyphCount {
		return nil, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if g := f.glyphs[r]; g != nil {
		return g, true
	}
	size := int(f.Header.GlyphByteSize)
	start := int(r) * size
	g := expand(f.data[start : start+f.GlyphHeight()])
	f.glyphs[r] = g
	return g, true
}

// expand unpacks one glyph, MSB first, one row per byte.
func expand(packed []byte) Glyph {
	g := make(Glyph, len(packed))
	for i, b := range packed {
		row := make([]uint8, GlyphWidth)
		for j := 0; j < GlyphWidth; j++ {
			row[j] = (b >> (7 - j)) & 1
		}
		g[i] = row
	}
	return g
}

// Measure returns the pixel size of s when drawn with this font:
// a fixed 8-pixel advance and a 2-pixel gap between lines.
func (f *Font) Measure(s string) (w, h int) {
	lines, col, widest := 1, 0, 0
	for _, r := range s {
		if r == '\n' {
			lines++
			col = 0
			continue
		}
		col++
		widest = max(widest, col)
	}
	return widest * GlyphWidth, lines*(f.GlyphHeight()+2) - 2
}
