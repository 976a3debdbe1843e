package gfx

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Texel is one image pixel. Transparent texels leave the framebuffer untouched
// when the image is composited.
type Texel struct {
	Color  RGB
	Opaque bool
}

// Image is a rectangular grid of optional pixels, row-major: img[y][x].
// It is the engine's form of a decoded picture and is read-only once built,
// so one Image can be drawn every frame from any goroutine.
type Image [][]Texel

// NewImage returns a fully transparent w×h image.
func NewImage(w, h int) Image {
	img := make(Image, h)
	for y := range img {
		img[y] = make([]Texel, w)
	}
	return img
}

// Width returns the width of the widest row.
func (img Image) Width() int {
	w := 0
	for _, row := range img {
		w = max(w, len(row))
	}
	return w
}

// Height returns the number of rows.
func (img Image) Height() int {
	return len(img)
}

// FromImage converts a decoded image. Pixels with zero alpha become
// transparent; every other pixel keeps its color and drops its alpha.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			img[y-b.Min.Y][x-b.Min.X] = Texel{Color: RGB{c.R, c.G, c.B}, Opaque: true}
		}
	}
	return img
}

// DecodeImage decodes any registered image format (png, gif, jpeg, bmp, webp).
func DecodeImage(r io.Reader) (Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("gfx: cannot decode image: %w", err)
	}
	return FromImage(src), nil
}

// LoadImage reads and decodes an image file.
func LoadImage(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gfx: cannot open image %s: %w", path, err)
	}
	defer f.Close()
	return DecodeImage(f)
}

// Section copies the sub-rectangle [x1,x2) × [y1,y2) out of img, which is
// how sprites are cut from a sprite sheet. The bounds are clipped to img.
func (img Image) Section(x1, y1, x2, y2 int) Image {
	y1, y2 = max(0, y1), min(len(img), y2)
	if y2 <= y1 || x2 <= x1 {
		return Image{}
	}
	out := make(Image, 0, y2-y1)
	for _, row := range img[y1:y2] {
		lo, hi := max(0, min(x1, len(row))), max(0, min(x2, len(row)))
		out = append(out, append([]Texel(nil), row[lo:hi]...))
	}
	return out
}

// Mirror returns a copy with rows reversed when rows is set and pixels
// within each row reversed when cols is set.
func (img Image) Mirror(rows, cols bool) Image {
	out := make(Image, len(img))
	for y := range img {
		src := y
		if rows {
			src = len(img) - 1 - y
		}
		r := append([]Texel(nil), img[src]...)
		if cols {
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
		}
		out[y] = r
	}
	return out
}

// Scale resizes img to w×h with nearest-neighbor sampling, which keeps hard
// pixel-art edges and the transparency mask intact.
func (img Image) Scale(w, h int) Image {
	if w <= 0 || h <= 0 {
		return Image{}
	}
	src := img.RGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromImage(dst)
}

// RGBA converts img back to a standard image; transparent texels get zero alpha.
func (img Image) RGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width(), img.Height()))
	for y, row := range img {
		for x, t := range row {
			if t.Opaque {
				out.SetNRGBA(x, y, color.NRGBA{t.Color.R, t.Color.G, t.Color.B, 255})
			}
		}
	}
	return out
}
