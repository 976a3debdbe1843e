package gfx

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

type fixedSize struct {
	cols, rows int
	err        error
}

func (s fixedSize) Size() (int, int, error) { return s.cols, s.rows, s.err }

func TestNewDimensions(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		wantH   int
	}{
		{"halfblock", HalfBlock{}, 48},
		{"tile", Tile{}, 24},
		{"nil defaults to halfblock", nil, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := New(80, 24, tt.backend, nil)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if fb.Width() != 80 {
				t.Errorf("Width() = %d, expected 80", fb.Width())
			}
			if fb.Height() != tt.wantH {
				t.Errorf("Height() = %d, expected %d", fb.Height(), tt.wantH)
			}
		})
	}
}

func TestNewInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 24}, {80, 0}, {-1, -1}} {
		if _, err := New(size[0], size[1], nil, nil); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d, %d) error = %v, expected ErrInvalidSize", size[0], size[1], err)
		}
	}
}

func TestNewFromTerminal(t *testing.T) {
	fb, err := NewFromTerminal(fixedSize{cols: 10, rows: 5}, HalfBlock{}, nil)
	if err != nil {
		t.Fatalf("NewFromTerminal() failed: %v", err)
	}
	if fb.Width() != 10 || fb.Height() != 10 {
		t.Errorf("size = %dx%d, expected 10x10", fb.Width(), fb.Height())
	}

	sizeErr := errors.New("not a tty")
	_, err = NewFromTerminal(fixedSize{err: sizeErr}, HalfBlock{}, nil)
	if !errors.Is(err, ErrTerminalSize) {
		t.Errorf("error = %v, expected ErrTerminalSize", err)
	}
	if !errors.Is(err, sizeErr) {
		t.Errorf("error = %v, expected it to wrap the size error", err)
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	sky := RGB{10, 20, 30}
	fb, err := New(8, 4, HalfBlock{}, func(fb *Framebuffer) {
		fb.Bg(sky)
		fb.SetPixel(3, 3, White)
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	baseline := slices.Clone(fb.current)

	for frame := 0; frame < 3; frame++ {
		fb.Bg(RGB{uint8(frame), 0, 0})
		fb.Line(0, 0, 7, 7, White)
		fb.Rectangle(2, 2, 6, 6, RGB{1, 2, 3})
		fb.Reset()

		if got := slices.Clone(fb.current); !slices.Equal(got, baseline) {
			t.Fatalf("frame %d: Reset() did not restore the baseline", frame)
		}
	}

	fb.Reset()
	if got := slices.Clone(fb.current); !slices.Equal(got, baseline) {
		t.Error("Reset() is not idempotent")
	}
}

func TestSetPixelAndPixel(t *testing.T) {
	fb, _ := New(4, 2, HalfBlock{}, nil)
	c := RGB{200, 100, 50}

	fb.SetPixel(1, 3, c)
	got, ok := fb.Pixel(1, 3)
	if !ok || got != c {
		t.Errorf("Pixel(1, 3) = %v, %v; expected %v, true", got, ok, c)
	}

	if _, ok := fb.Pixel(4, 0); ok {
		t.Error("Pixel(4, 0) reported in bounds")
	}
	if _, ok := fb.Pixel(0, -1); ok {
		t.Error("Pixel(0, -1) reported in bounds")
	}
}

func TestRenderHalfBlock(t *testing.T) {
	fb, _ := New(2, 1, HalfBlock{}, nil)
	fb.SetPixel(0, 0, RGB{1, 2, 3})
	fb.SetPixel(0, 1, RGB{4, 5, 6})
	fb.SetPixel(1, 0, RGB{255, 0, 128})
	fb.SetPixel(1, 1, RGB{0, 0, 0})

	var buf bytes.Buffer
	if err := fb.Render(&buf); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	want := "\x1b[J\x1b[H" +
		"\x1b[38;2;4;5;6m\x1b[48;2;1;2;3m▄" +
		"\x1b[38;2;0;0;0m\x1b[48;2;255;0;128m▄"
	if buf.String() != want {
		t.Errorf("Render() = %q, expected %q", buf.String(), want)
	}
}

func TestRenderTile(t *testing.T) {
	fb, _ := New(3, 1, Tile{}, nil)
	fb.SetPixel(1, 0, White)
	fb.SetPixel(2, 0, ANSIRed.RGB())

	var buf bytes.Buffer
	if err := fb.Render(&buf); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	want := "\x1b[J\x1b[H\x1b[0;30;40m \x1b[0;30;107m \x1b[0;30;41m "
	if buf.String() != want {
		t.Errorf("Render() = %q, expected %q", buf.String(), want)
	}
}

func TestRenderDoesNotMutate(t *testing.T) {
	fb, _ := New(4, 2, HalfBlock{}, func(fb *Framebuffer) { fb.Bg(RGB{9, 9, 9}) })
	fb.SetPixel(2, 2, White)
	before := slices.Clone(fb.current)

	var first, second bytes.Buffer
	fb.Render(&first)
	fb.Render(&second)

	if !slices.Equal(slices.Clone(fb.current), before) {
		t.Error("Render() modified the pixel grid")
	}
	if first.String() != second.String() {
		t.Error("consecutive renders of the same grid differ")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderWriteError(t *testing.T) {
	fb, _ := New(2, 1, HalfBlock{}, nil)
	if err := fb.Render(failWriter{}); err == nil {
		t.Error("Render() to a failing writer returned nil")
	}
}

func TestRenderStatus(t *testing.T) {
	fb, _ := New(2, 1, Tile{}, nil)
	fb.SetPixel(1, 0, White)

	var buf bytes.Buffer
	if err := fb.RenderStatus(&buf, "score 3"); err != nil {
		t.Fatalf("RenderStatus() failed: %v", err)
	}

	want := "\x1b[J\x1b[H\x1b[0;30;40m \x1b[0;30;107m \n\x1b[0mscore 3"
	if buf.String() != want {
		t.Errorf("RenderStatus() = %q, expected %q", buf.String(), want)
	}
}
