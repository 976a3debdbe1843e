//go:build termfx_debug

package gfx

import "fmt"

func outOfBounds(x, y, w, h int) {
	panic(fmt.Sprintf("gfx: pixel (%d, %d) outside %dx%d framebuffer", x, y, w, h))
}
