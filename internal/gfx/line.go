package gfx

import "github.com/vovakirdan/termfx/internal/core"

// Bresenham returns the pixels of the segment from (x1, y1) to (x2, y2),
// both endpoints included, in the order they are visited walking from the
// first endpoint to the second.
func Bresenham(x1, y1, x2, y2 int) []core.Point {
	steep := core.Abs(y2-y1) > core.Abs(x2-x1)
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
	}

	reversed := false
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
		reversed = true
	}

	dx := x2 - x1
	dy := core.Abs(y2 - y1)
	ystep := 1
	if y1 > y2 {
		ystep = -1
	}

	points := make([]core.Point, 0, dx+1)
	err := dx / 2
	y := y1
	for x := x1; x <= x2; x++ {
		if steep {
			points = append(points, core.Pt(y, x))
		} else {
			points = append(points, core.Pt(x, y))
		}
		err -= dy
		if err < 0 {
			y += ystep
			err += dx
		}
	}

	if reversed {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}
