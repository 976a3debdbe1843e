package gfx

import (
	"slices"
	"testing"

	"github.com/vovakirdan/termfx/internal/core"
)

func TestBresenhamDiagonal(t *testing.T) {
	want := []core.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}

	if got := Bresenham(0, 0, 3, 3); !slices.Equal(got, want) {
		t.Errorf("Bresenham(0,0,3,3) = %v, expected %v", got, want)
	}

	slices.Reverse(want)
	if got := Bresenham(3, 3, 0, 0); !slices.Equal(got, want) {
		t.Errorf("Bresenham(3,3,0,0) = %v, expected %v", got, want)
	}
}

func TestBresenhamOctants(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           []core.Point
	}{
		{"single point", 2, 2, 2, 2, []core.Point{{2, 2}}},
		{"horizontal", 0, 0, 3, 0, []core.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"horizontal reversed", 3, 0, 0, 0, []core.Point{{3, 0}, {2, 0}, {1, 0}, {0, 0}}},
		{"vertical", 1, 0, 1, 2, []core.Point{{1, 0}, {1, 1}, {1, 2}}},
		{"vertical up", 1, 2, 1, 0, []core.Point{{1, 2}, {1, 1}, {1, 0}}},
		{"shallow", 0, 0, 4, 2, []core.Point{{0, 0}, {1, 0}, {2, 1}, {3, 1}, {4, 2}}},
		{"steep", 0, 0, 2, 4, []core.Point{{0, 0}, {0, 1}, {1, 2}, {1, 3}, {2, 4}}},
		{"anti-diagonal", 0, 3, 3, 0, []core.Point{{0, 3}, {1, 2}, {2, 1}, {3, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bresenham(tt.x1, tt.y1, tt.x2, tt.y2)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Bresenham(%d,%d,%d,%d) = %v, expected %v",
					tt.x1, tt.y1, tt.x2, tt.y2, got, tt.want)
			}
		})
	}
}

func TestBresenhamEndpointsAndContinuity(t *testing.T) {
	cases := [][4]int{{0, 0, 17, 5}, {-3, 8, 9, -6}, {12, 1, 2, 19}, {5, 5, -5, 4}}

	for _, c := range cases {
		pts := Bresenham(c[0], c[1], c[2], c[3])
		if pts[0] != core.Pt(c[0], c[1]) {
			t.Errorf("%v: first point = %v", c, pts[0])
		}
		if pts[len(pts)-1] != core.Pt(c[2], c[3]) {
			t.Errorf("%v: last point = %v", c, pts[len(pts)-1])
		}
		for i := 1; i < len(pts); i++ {
			dx := core.Abs(pts[i].X - pts[i-1].X)
			dy := core.Abs(pts[i].Y - pts[i-1].Y)
			if dx > 1 || dy > 1 {
				t.Errorf("%v: gap between %v and %v", c, pts[i-1], pts[i])
			}
		}
	}
}
