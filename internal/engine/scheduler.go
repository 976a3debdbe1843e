// Package engine runs programs on a framebuffer: a fixed-cadence frame loop,
// a key dispatcher and an optional simulation tick, all sharing one
// cancellation context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termfx/internal/gfx"
)

// DefaultFramePeriod is the target frame period, about 60 Hz.
const DefaultFramePeriod = 16 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a scheduler that has already run.
var ErrAlreadyStarted = errors.New("engine: scheduler already started")

// Clock abstracts time for the frame loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// PanicError reports a callback that panicked.
type PanicError struct {
	Loop  string // "init", "draw", "key" or "tick"
	Seq   uint64 // frame, key or tick number
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("engine: %s callback panicked (#%d): %v", e.Loop, e.Seq, e.Value)
}

// Stats counts what a run did.
type Stats struct {
	Frames   uint64        // frames rendered
	Overruns uint64        // frames that took longer than the period
	Panics   uint64        // callback panics, isolated or not
	Keys     uint64        // key events delivered
	Ticks    uint64        // simulation ticks
	Busy     time.Duration // time spent drawing and rendering
}

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Scheduler owns a framebuffer and redraws it at a fixed period.
// Each frame it resets the framebuffer to its baseline, calls the draw
// callback and renders. A slow frame is followed immediately by the next one;
// missed frames are dropped, never batched.
type Scheduler struct {
	fb      *gfx.Framebuffer
	out     io.Writer
	period  time.Duration
	clock   Clock
	logger  *log.Logger
	isolate bool
	status  func() string

	state    atomic.Int32
	frames   atomic.Uint64
	overruns atomic.Uint64
	panics   atomic.Uint64
	busy     atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFramePeriod sets the target frame period. Non-positive values keep
// the default.
func WithFramePeriod(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.period = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger for overruns and isolated panics.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPanicIsolation controls what a panicking draw callback does. When on
// (the default) the panic is logged and the loop continues with the next
// frame; when off the loop stops and Wait returns a *PanicError.
func WithPanicIsolation(on bool) Option {
	return func(s *Scheduler) { s.isolate = on }
}

// WithStatus adds a status line under every frame. status runs on the frame
// goroutine right after the draw callback; the framebuffer must be one
// terminal row shorter than the terminal.
func WithStatus(status func() string) Option {
	return func(s *Scheduler) { s.status = status }
}

// NewScheduler creates an idle scheduler that renders fb to out.
func NewScheduler(fb *gfx.Framebuffer, out io.Writer, opts ...Option) *Scheduler {
	s := &Scheduler{
		fb:      fb,
		out:     out,
		period:  DefaultFramePeriod,
		clock:   realClock{},
		logger:  log.New(io.Discard),
		isolate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period returns the target frame period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Stats returns a snapshot of the counters. It is safe to call while running.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Frames:   s.frames.Load(),
		Overruns: s.overruns.Load(),
		Panics:   s.panics.Load(),
		Busy:     time.Duration(s.busy.Load()),
	}
}

// FrameRun is a handle on a running frame loop.
type FrameRun struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	fb  *gfx.Framebuffer
	err error
}

// Stop asks the loop to exit before its next frame. The frame in progress
// always completes. Stop may be called any number of times.
func (r *FrameRun) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Done is closed when the loop has exited.
func (r *FrameRun) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the loop exits and hands back the framebuffer as last
// rendered. The error is nil after Stop or context cancellation.
func (r *FrameRun) Wait() (*gfx.Framebuffer, error) {
	<-r.done
	return r.fb, r.err
}

// Start launches the frame loop in its own goroutine. From here until the
// loop exits the framebuffer belongs to the loop; draw only borrows it for
// one frame. A scheduler runs once.
func (s *Scheduler) Start(ctx context.Context, draw func(*gfx.Framebuffer)) (*FrameRun, error) {
	if !s.state.CompareAndSwap(stateIdle, stateRunning) {
		return nil, ErrAlreadyStarted
	}
	if draw == nil {
		draw = func(*gfx.Framebuffer) {}
	}

	r := &FrameRun{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop(ctx, r, draw)
	return r, nil
}

func (s *Scheduler) loop(ctx context.Context, r *FrameRun, draw func(*gfx.Framebuffer)) {
	defer close(r.done)
	defer s.state.Store(stateStopped)

	for frame := uint64(0); ; frame++ {
		select {
		case <-r.stop:
			r.fb = s.fb
			return
		case <-ctx.Done():
			r.fb = s.fb
			return
		default:
		}

		start := s.clock.Now()
		s.fb.Reset()
		status, err := s.drawFrame(frame, draw)
		if err != nil {
			r.fb, r.err = s.fb, err
			return
		}
		if s.status != nil {
			err = s.fb.RenderStatus(s.out, status)
		} else {
			err = s.fb.Render(s.out)
		}
		if err != nil {
			s.logger.Error("render failed", "frame", frame, "err", err)
			r.fb, r.err = s.fb, err
			return
		}
		s.frames.Add(1)

		elapsed := s.clock.Now().Sub(start)
		s.busy.Add(int64(elapsed))
		if elapsed < s.period {
			s.clock.Sleep(s.period - elapsed)
			continue
		}
		s.overruns.Add(1)
		s.logger.Debug("frame overrun", "frame", frame, "elapsed", elapsed, "period", s.period)
	}
}

func (s *Scheduler) drawFrame(frame uint64, draw func(*gfx.Framebuffer)) (status string, err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		s.panics.Add(1)
		perr := &PanicError{Loop: "draw", Seq: frame, Value: v, Stack: debug.Stack()}
		if s.isolate {
			s.logger.Error("draw callback panicked", "frame", frame, "panic", v)
			return
		}
		err = perr
	}()
	draw(s.fb)
	if s.status != nil {
		status = s.status()
	}
	return status, nil
}
