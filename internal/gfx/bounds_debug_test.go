//go:build termfx_debug

package gfx

import "testing"

func TestSetPixelOutOfRangePanics(t *testing.T) {
	fb, _ := New(4, 2, HalfBlock{}, nil)
	defer func() {
		if recover() == nil {
			t.Error("SetPixel(4, 0) did not panic in a debug build")
		}
	}()
	fb.SetPixel(4, 0, White)
}
