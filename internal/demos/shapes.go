package demos

import (
	"math"
	"sync"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/gfx"
	"github.com/vovakirdan/termfx/internal/registry"
)

func init() {
	registry.Register("shapes", func() registry.Demo { return &Shapes{} })
}

// Shapes shows every drawing primitive at once: a spinning triangle inside
// a pulsing circle, radial lines and a sliding block.
type Shapes struct{}

func (*Shapes) ID() string      { return "shapes" }
func (*Shapes) Title() string   { return "Shapes" }
func (*Shapes) Backend() string { return "halfblock" }

type shapesState struct {
	mu     sync.Mutex
	width  int
	height int
	angle  float64
	speed  float64
	step   int
	paused bool
}

// Program builds the primitives showcase. Left and right change the spin
// speed, pause freezes it.
func (*Shapes) Program(env registry.Env) engine.Program {
	st := &shapesState{speed: 2}
	palette := gfx.Gradient(gfx.RGB{255, 94, 98}, gfx.RGB{70, 130, 255}, 12)

	return engine.Program{
		Title: "termfx: shapes",
		Init: func(fb *gfx.Framebuffer) {
			fb.Bg(gfx.RGB{16, 16, 24})

			st.mu.Lock()
			defer st.mu.Unlock()
			st.width, st.height = fb.Width(), fb.Height()
		},
		Draw: func(fb *gfx.Framebuffer) {
			st.mu.Lock()
			angle, step := st.angle, st.step
			st.mu.Unlock()

			cx, cy := fb.Width()/2, fb.Height()/2
			r := core.Max(2, core.Min(cx, cy)-2)

			for i, c := range palette {
				a := angle + float64(i)*math.Pi/6
				fb.Line(cx, cy, cx+int(float64(r)*math.Cos(a)/3), cy+int(float64(r)*math.Sin(a)/3), c)
			}

			fb.Circle(cx, cy, r-step%4, gfx.White)

			var pts [3]core.Point
			for i := range pts {
				a := angle + float64(i)*2*math.Pi/3
				pts[i] = core.Pt(cx+int(math.Round(float64(r)*0.8*math.Cos(a))),
					cy+int(math.Round(float64(r)*0.8*math.Sin(a))))
			}
			fb.Triangle(pts[0], pts[1], pts[2], gfx.RGB{255, 215, 0})

			bx := step % core.Max(1, fb.Width()-6)
			fb.Rectangle(bx, fb.Height()-6, bx+6, fb.Height()-2, gfx.RGB{46, 204, 113})
		},
		OnKey: func(ev engine.KeyEvent) {
			st.mu.Lock()
			defer st.mu.Unlock()
			switch ev.Action {
			case core.ActionLeft:
				st.speed = math.Max(-8, st.speed-1)
			case core.ActionRight:
				st.speed = math.Min(8, st.speed+1)
			case core.ActionPause:
				st.paused = !st.paused
			case core.ActionRestart:
				st.angle, st.step, st.speed = 0, 0, 2
			}
		},
		Tick: func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.paused {
				return
			}
			st.angle = math.Mod(st.angle+st.speed*math.Pi/180, 2*math.Pi)
			st.step++
		},
		TickPeriod: env.Config.TickPeriod,
	}
}
