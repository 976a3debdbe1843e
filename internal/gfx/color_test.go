package gfx

import "testing"

func TestNearestANSI(t *testing.T) {
	tests := []struct {
		in   RGB
		want ANSI
	}{
		{Black, ANSIBlack},
		{White, ANSIBrightWhite},
		{RGB{200, 10, 10}, ANSIRed},
		{RGB{250, 250, 10}, ANSIBrightYellow},
		{RGB{0, 0, 230}, ANSIBlue},
		// Closer to bright black in RGB, but perceptually blue.
		{RGB{40, 40, 120}, ANSIBrightBlue},
	}

	for _, tt := range tests {
		if got := NearestANSI(tt.in); got != tt.want {
			t.Errorf("NearestANSI(%v) = %d, expected %d", tt.in, got, tt.want)
		}
	}

	for a := ANSIBlack; a <= ANSIBrightWhite; a++ {
		if got := NearestANSI(a.RGB()); got != a {
			t.Errorf("NearestANSI(%d.RGB()) = %d", a, got)
		}
	}
}

func TestSGRCodes(t *testing.T) {
	if ANSIRed.FgCode() != 31 || ANSIRed.BgCode() != 41 {
		t.Error("red codes wrong")
	}
	if ANSIBrightCyan.FgCode() != 96 || ANSIBrightCyan.BgCode() != 106 {
		t.Error("bright cyan codes wrong")
	}
}

func TestGradient(t *testing.T) {
	g := Gradient(Black, White, 5)
	if len(g) != 5 || g[0] != Black || g[4] != White {
		t.Errorf("Gradient endpoints = %v", g)
	}
	if Gradient(Black, White, 0) != nil {
		t.Error("Gradient(n=0) should be nil")
	}
}
