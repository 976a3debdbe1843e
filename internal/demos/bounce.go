package demos

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/gfx"
	"github.com/vovakirdan/termfx/internal/registry"
)

func init() {
	registry.Register("bounce", func() registry.Demo { return &Bounce{} })
}

// Bounce is a 16-color paddle game: keep the ball off the floor.
type Bounce struct{}

func (*Bounce) ID() string      { return "bounce" }
func (*Bounce) Title() string   { return "Bounce" }
func (*Bounce) Backend() string { return "tile" }

const paddleWidth = 8

type bounceState struct {
	mu     sync.Mutex
	rng    *rand.Rand
	width  int
	height int
	paddle core.Rect
	ball   core.Rect
	dx, dy int
	score  int
	misses int
	paused bool
}

// Program builds the paddle game. Left and right move the paddle, restart
// resets the score.
func (*Bounce) Program(env registry.Env) engine.Program {
	st := &bounceState{rng: rand.New(rand.NewSource(env.Config.Seed))}

	wall := gfx.ANSIBrightBlack.RGB()
	return engine.Program{
		Title: "termfx: bounce",
		Init: func(fb *gfx.Framebuffer) {
			fb.Bg(gfx.ANSIBlue.RGB())
			fb.Rectangle(0, 0, fb.Width(), 1, wall)
			fb.Rectangle(0, 0, 1, fb.Height(), wall)
			fb.Rectangle(fb.Width()-1, 0, fb.Width(), fb.Height(), wall)

			st.mu.Lock()
			defer st.mu.Unlock()
			st.width, st.height = fb.Width(), fb.Height()
			st.reset()
		},
		Draw: func(fb *gfx.Framebuffer) {
			st.mu.Lock()
			paddle, ball := st.paddle, st.ball
			st.mu.Unlock()

			fb.FillRect(paddle, gfx.ANSIBrightWhite.RGB())
			fb.FillRect(ball, gfx.ANSIBrightYellow.RGB())
		},
		Status: st.status,
		OnKey: func(ev engine.KeyEvent) {
			st.mu.Lock()
			defer st.mu.Unlock()
			switch ev.Action {
			case core.ActionLeft:
				st.movePaddle(-2)
			case core.ActionRight:
				st.movePaddle(2)
			case core.ActionPause:
				st.paused = !st.paused
			case core.ActionRestart:
				st.score, st.misses = 0, 0
				st.reset()
			}
		},
		Tick:       st.tick,
		TickPeriod: 4 * env.Config.TickPeriod,
	}
}

// reset serves a new ball. Callers hold mu.
func (st *bounceState) reset() {
	pw := core.Min(paddleWidth, st.width-2)
	st.paddle = core.NewRect((st.width-pw)/2, st.height-2, pw, 1)
	st.ball = core.NewRect(1+st.rng.Intn(core.Max(1, st.width-3)), 2, 1, 1)
	st.dx, st.dy = 1, 1
	if st.rng.Intn(2) == 0 {
		st.dx = -1
	}
}

func (st *bounceState) status() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	line := fmt.Sprintf("score %d  misses %d", st.score, st.misses)
	if st.paused {
		line += "  [paused]"
	}
	return line
}

func (st *bounceState) movePaddle(dx int) {
	st.paddle.X = core.Clamp(st.paddle.X+dx, 1, st.width-1-st.paddle.W)
}

func (st *bounceState) tick() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.paused || st.width < 4 || st.height < 4 {
		return
	}

	next := st.ball.Translate(st.dx, st.dy)
	if next.X < 1 || next.Right() > st.width-1 {
		st.dx = -st.dx
	}
	if next.Y < 1 {
		st.dy = -st.dy
	}
	if st.dy > 0 && next.Intersects(st.paddle) {
		st.dy = -st.dy
		st.score++
	}
	st.ball = st.ball.Translate(st.dx, st.dy)

	if st.ball.Y >= st.height {
		st.misses++
		st.reset()
	}
}
