package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/termfx/internal/gfx"
)

// Terminal is what a run needs from the host: a size read once at startup,
// somewhere to write frames and a key stream.
type Terminal interface {
	io.Writer
	Size() (cols, rows int, err error)
	Input() io.Reader
}

// Program is a set of callbacks driven by Run.
//
// Draw runs on the frame goroutine, OnKey on the input goroutine and Tick on
// the tick goroutine, concurrently with each other. State shared between
// them must be guarded by one lock that each callback holds only while it
// touches that state; the engine never takes it.
type Program struct {
	Title string

	// Init paints the static background once; the result is the baseline
	// every frame starts from.
	Init func(fb *gfx.Framebuffer)

	// Draw paints one frame on top of the baseline.
	Draw func(fb *gfx.Framebuffer)

	// OnKey handles a key press. Quit keys are never delivered.
	OnKey func(ev KeyEvent)

	// Tick advances the simulation every TickPeriod. Nil disables ticking.
	Tick       func()
	TickPeriod time.Duration

	// Status, if set, is printed under the grid each frame and the grid
	// gives up the terminal's last row for it. It runs on the frame
	// goroutine after Draw.
	Status func() string
}

// Options configures Run.
type Options struct {
	Backend     gfx.Backend // nil selects the half-block backend
	FramePeriod time.Duration
	QuitKeys    []string
	// PanicIsolation keeps the frame and tick loops alive when their
	// callbacks panic. Left false, a panic ends the run with a *PanicError.
	PanicIsolation bool
	Logger         *log.Logger
}

// Run builds a framebuffer sized to t and runs p until a quit key, ctx
// cancellation or a loop failure. All loops observe the same cancellation,
// so any one of them ending stops the others. The terminal mode is the
// caller's business; Run only writes frames.
func Run(ctx context.Context, t Terminal, p Program, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var sizer gfx.Sizer = t
	if p.Status != nil {
		sizer = statusSizer{t}
	}
	fb, err := newFramebuffer(sizer, opts.Backend, p.Init)
	if err != nil {
		var perr *PanicError
		if errors.As(err, &perr) {
			logger.Error("init callback panicked", "panic", perr.Value)
			return Stats{Panics: 1}, err
		}
		return Stats{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	schedOpts := []Option{
		WithFramePeriod(opts.FramePeriod),
		WithLogger(logger),
		WithPanicIsolation(opts.PanicIsolation),
	}
	if p.Status != nil {
		schedOpts = append(schedOpts, WithStatus(p.Status))
	}
	sched := NewScheduler(fb, t, schedOpts...)
	frames, err := sched.Start(gctx, p.Draw)
	if err != nil {
		return Stats{}, err
	}
	g.Go(func() error {
		_, err := frames.Wait()
		return err
	})

	input := NewDispatcher(t.Input(), WithQuitKeys(opts.QuitKeys...), WithInputLogger(logger)).
		Start(gctx, p.OnKey)
	g.Go(func() error {
		err := input.Wait()
		if input.Quit() {
			logger.Debug("quit key pressed")
			cancel()
		}
		return err
	})

	var ticks, tickPanics atomic.Uint64
	if p.Tick != nil && p.TickPeriod > 0 {
		g.Go(func() error {
			return tickLoop(gctx, p.Tick, p.TickPeriod, opts.PanicIsolation, logger, &ticks, &tickPanics)
		})
	}

	logger.Info("run started", "title", p.Title, "backend", fb.Backend().Name(),
		"size", [2]int{fb.Width(), fb.Height()}, "period", sched.Period())
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	stats := sched.Stats()
	stats.Keys = input.Keys()
	stats.Ticks = ticks.Load()
	stats.Panics += tickPanics.Load() + input.Panics()
	logger.Info("run finished", "frames", stats.Frames, "overruns", stats.Overruns, "err", err)
	return stats, err
}

// newFramebuffer builds the framebuffer, turning a panic in init into a
// *PanicError. Init runs once, so there is nothing to isolate it for.
func newFramebuffer(t gfx.Sizer, backend gfx.Backend, initDraw func(*gfx.Framebuffer)) (fb *gfx.Framebuffer, err error) {
	defer func() {
		if v := recover(); v != nil {
			fb, err = nil, &PanicError{Loop: "init", Value: v, Stack: debug.Stack()}
		}
	}()
	return gfx.NewFromTerminal(t, backend, initDraw)
}

// statusSizer reports one row fewer than the terminal has.
type statusSizer struct{ gfx.Sizer }

func (s statusSizer) Size() (int, int, error) {
	cols, rows, err := s.Sizer.Size()
	if err != nil {
		return 0, 0, err
	}
	if rows <= 1 {
		return 0, 0, fmt.Errorf("%w: no room for a status line in %d rows", gfx.ErrInvalidSize, rows)
	}
	return cols, rows - 1, nil
}

func tickLoop(ctx context.Context, tick func(), period time.Duration, isolate bool,
	logger *log.Logger, count, panics *atomic.Uint64) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n := count.Add(1)
		if err := safeTick(tick, n); err != nil {
			panics.Add(1)
			if !isolate {
				return err
			}
			logger.Error("tick callback panicked", "tick", n, "err", err)
		}
	}
}

func safeTick(tick func(), n uint64) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Loop: "tick", Seq: n, Value: v, Stack: debug.Stack()}
		}
	}()
	tick()
	return nil
}
