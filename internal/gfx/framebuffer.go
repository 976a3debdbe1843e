// Package gfx is the engine's drawing surface: a pixel framebuffer addressed
// below character-cell resolution, the primitives that paint into it, and
// the backends that serialize it to a terminal.
//
// A Framebuffer is not safe for concurrent use. Once handed to a scheduler it
// belongs to the scheduler's goroutine; draw callbacks only borrow it for the
// duration of one frame.
package gfx

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/vovakirdan/termfx/internal/core"
)

var (
	// ErrInvalidSize is returned when a framebuffer would have no pixels.
	ErrInvalidSize = errors.New("gfx: framebuffer size must be positive")

	// ErrTerminalSize is returned when the terminal size cannot be read.
	ErrTerminalSize = errors.New("gfx: cannot determine terminal size")
)

// clearHome erases from the cursor down and homes the cursor.
var clearHome = []byte("\x1b[J\x1b[H")

// statusPrefix starts the status line: next row, default colors.
const statusPrefix = "\n\x1b[0m"

// Sizer reports the host terminal's size in character cells.
type Sizer interface {
	Size() (cols, rows int, err error)
}

// Framebuffer is a pixel grid with a baseline snapshot.
// The baseline is whatever the initial-draw callback painted; Reset restores
// it in one copy so each frame starts from the static background.
type Framebuffer struct {
	width   int
	height  int
	backend Backend

	current  []RGB
	baseline []RGB

	w *bufio.Writer
}

// New allocates a framebuffer for a cols×rows terminal. The pixel height is
// rows times the backend's rows per cell. initialDraw, if not nil, paints the
// background once; the result becomes the baseline.
func New(cols, rows int, backend Backend, initialDraw func(*Framebuffer)) (*Framebuffer, error) {
	if backend == nil {
		backend = HalfBlock{}
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}

	fb := &Framebuffer{
		width:   cols,
		height:  rows * backend.RowsPerCell(),
		backend: backend,
	}
	fb.current = make([]RGB, fb.width*fb.height)

	if initialDraw != nil {
		initialDraw(fb)
	}

	fb.baseline = make([]RGB, len(fb.current))
	copy(fb.baseline, fb.current)
	return fb, nil
}

// NewFromTerminal reads the terminal size once and builds a framebuffer for it.
// Later resizes are not tracked.
func NewFromTerminal(t Sizer, backend Backend, initialDraw func(*Framebuffer)) (*Framebuffer, error) {
	cols, rows, err := t.Size()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTerminalSize, err)
	}
	return New(cols, rows, backend, initialDraw)
}

// Width returns the width in pixels (terminal columns).
func (fb *Framebuffer) Width() int {
	return fb.width
}

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int {
	return fb.height
}

// Backend returns the backend chosen at construction.
func (fb *Framebuffer) Backend() Backend {
	return fb.backend
}

// Reset overwrites the whole current grid with the baseline.
func (fb *Framebuffer) Reset() {
	copy(fb.current, fb.baseline)
}

// InBounds reports whether (x, y) addresses a pixel.
func (fb *Framebuffer) InBounds(x, y int) bool {
	return fb.bounds().Contains(x, y)
}

func (fb *Framebuffer) bounds() core.Rect {
	return core.NewRect(0, 0, fb.width, fb.height)
}

// SetPixel writes one pixel. Coordinates outside the grid are a caller bug:
// debug builds (-tags termfx_debug) panic, other builds drop the write.
func (fb *Framebuffer) SetPixel(x, y int, c RGB) {
	if !fb.InBounds(x, y) {
		outOfBounds(x, y, fb.width, fb.height)
		return
	}
	fb.current[y*fb.width+x] = c
}

// Pixel returns the current color at (x, y), and false outside the grid.
func (fb *Framebuffer) Pixel(x, y int) (RGB, bool) {
	if !fb.InBounds(x, y) {
		return Black, false
	}
	return fb.current[y*fb.width+x], true
}

// Bg fills the whole grid with one color.
func (fb *Framebuffer) Bg(c RGB) {
	for i := range fb.current {
		fb.current[i] = c
	}
}

// Render writes the current grid to w: clear-and-home, the backend's cell
// stream, then a single flush. It does not modify the grid.
func (fb *Framebuffer) Render(w io.Writer) error {
	return fb.render(w, "", false)
}

// RenderStatus is Render followed by a text line under the grid, written
// after a newline and a style reset. The grid must leave a terminal row free
// for it.
func (fb *Framebuffer) RenderStatus(w io.Writer, status string) error {
	return fb.render(w, status, true)
}

func (fb *Framebuffer) render(w io.Writer, status string, withStatus bool) error {
	if fb.w == nil {
		fb.w = bufio.NewWriterSize(w, fb.width*fb.height*20+len(clearHome))
	} else {
		fb.w.Reset(w)
	}

	fb.w.Write(clearHome)
	fb.backend.Encode(fb.w, fb.current, fb.width, fb.height)
	if withStatus {
		fb.w.WriteString(statusPrefix)
		fb.w.WriteString(status)
	}
	if err := fb.w.Flush(); err != nil {
		return fmt.Errorf("gfx: render: %w", err)
	}
	return nil
}
