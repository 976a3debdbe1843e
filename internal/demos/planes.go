package demos

import (
	"sync"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/gfx"
	"github.com/vovakirdan/termfx/internal/registry"
)

func init() {
	registry.Register("planes", func() registry.Demo { return &Planes{} })
}

// Planes scrolls a plane across a sky, wrapping at the right edge.
type Planes struct{}

func (*Planes) ID() string      { return "planes" }
func (*Planes) Title() string   { return "Planes" }
func (*Planes) Backend() string { return "halfblock" }

type planesState struct {
	mu      sync.Mutex
	sprite  gfx.Image
	width   int
	height  int
	x, y    int
	paused  bool
	flicker int
}

// Program builds the flight demo. Up and down steer, fire makes the plane
// flash, pause freezes it.
func (*Planes) Program(env registry.Env) engine.Program {
	st := &planesState{sprite: env.Sprite}
	if st.sprite.Height() == 0 {
		st.sprite = spriteFromStrings(planeSprite, map[byte]gfx.RGB{
			'#': {200, 40, 40},
			'=': {150, 20, 20},
			'o': {60, 60, 200},
		})
	}
	flash := gfx.White

	return engine.Program{
		Title: "termfx: planes",
		Init: func(fb *gfx.Framebuffer) {
			skyGradient(fb, gfx.RGB{135, 206, 235}, gfx.RGB{224, 246, 255})

			st.mu.Lock()
			defer st.mu.Unlock()
			st.width, st.height = fb.Width(), fb.Height()
			st.fitSprite()
			st.y = core.Max(0, st.height/2-st.sprite.Height()/2)
		},
		Draw: func(fb *gfx.Framebuffer) {
			st.mu.Lock()
			x, y, flicker, sprite := st.x, st.y, st.flicker, st.sprite
			st.mu.Unlock()

			opts := gfx.ImageOpts{MirrorV: true}
			if flicker%4 >= 2 {
				opts.Override = &flash
			}
			fb.Image(x, y, sprite, opts)
		},
		OnKey: func(ev engine.KeyEvent) {
			st.mu.Lock()
			defer st.mu.Unlock()
			switch ev.Action {
			case core.ActionUp:
				st.y = core.Max(0, st.y-1)
			case core.ActionDown:
				st.y = core.Max(0, core.Min(st.height-st.sprite.Height(), st.y+1))
			case core.ActionFire:
				st.flicker = 16
			case core.ActionPause:
				st.paused = !st.paused
			case core.ActionRestart:
				st.x = 0
			}
		},
		Tick:       st.tick,
		TickPeriod: env.Config.TickPeriod,
	}
}

// fitSprite shrinks a sprite taller than a third of the sky, keeping its
// aspect ratio. Callers hold mu.
func (st *planesState) fitSprite() {
	limit := st.height / 3
	if limit < 1 || st.sprite.Height() <= limit {
		return
	}
	w := core.Max(1, st.sprite.Width()*limit/st.sprite.Height())
	st.sprite = st.sprite.Scale(w, limit)
}

func (st *planesState) tick() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.flicker > 0 {
		st.flicker--
	}
	if st.paused {
		return
	}
	st.x++
	if st.x > st.width-st.sprite.Width() {
		st.x = 0
	}
}
