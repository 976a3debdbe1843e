package font

import "encoding/binary"

// Encode packs glyphs into a PSF2 font of the given glyph height.
// Each glyph row is packed MSB first; missing rows are left blank and rows
// beyond height are dropped.
func Encode(height int, glyphs []Glyph) []byte {
	out := make([]byte, HeaderSize+len(glyphs)*height)
	copy(out, Magic[:])

	le := binary.LittleEndian
	le.PutUint32(out[0x04:], 0) // version
	le.PutUint32(out[0x08:], HeaderSize)
	le.PutUint32(out[0x0c:], 0) // flags, no unicode table
	le.PutUint32(out[0x10:], uint32(len(glyphs)))
	le.PutUint32(out[0x14:], uint32(height))
	le.PutUint32(out[0x18:], uint32(height))
	le.PutUint32(out[0x1c:], GlyphWidth)

	table := out[HeaderSize:]
	for i, g := range glyphs {
		for y := 0; y < height && y < len(g); y++ {
			var b byte
			for x := 0; x < GlyphWidth && x < len(g[y]); x++ {
				if g[y][x] != 0 {
					b |= 0x80 >> x
				}
			}
			table[i*height+y] = b
		}
	}
	return out
}
