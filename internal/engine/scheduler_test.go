package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vovakirdan/termfx/internal/gfx"
)

// fakeClock advances only when slept or when a test advances it.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

func newTestFB(t *testing.T) *gfx.Framebuffer {
	t.Helper()
	fb, err := gfx.New(4, 2, gfx.HalfBlock{}, func(fb *gfx.Framebuffer) { fb.Bg(gfx.RGB{1, 1, 1}) })
	if err != nil {
		t.Fatalf("gfx.New() failed: %v", err)
	}
	return fb
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestSchedulerSleepsRemainder(t *testing.T) {
	clock := newFakeClock()
	var out bytes.Buffer
	s := NewScheduler(newTestFB(t), &out, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	run, err := s.Start(ctx, func(fb *gfx.Framebuffer) {
		clock.Advance(5 * time.Millisecond)
		frames++
		if frames == 5 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := run.Wait(); err != nil {
		t.Fatalf("Wait() = %v, expected nil", err)
	}

	if frames != 5 {
		t.Errorf("draw called %d times, expected 5 (in-flight frame completes)", frames)
	}
	slept := clock.Slept()
	if len(slept) != 5 {
		t.Fatalf("slept %d times, expected 5", len(slept))
	}
	for i, d := range slept {
		if d != 11*time.Millisecond {
			t.Errorf("sleep %d = %v, expected 11ms", i, d)
		}
	}
	st := s.Stats()
	if st.Frames != 5 || st.Overruns != 0 {
		t.Errorf("Stats() = %+v, expected 5 frames and no overruns", st)
	}
}

func TestSchedulerOverrunNoCatchUp(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(newTestFB(t), &bytes.Buffer{}, WithClock(clock), WithFramePeriod(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	run, _ := s.Start(ctx, func(fb *gfx.Framebuffer) {
		clock.Advance(25 * time.Millisecond)
		frames++
		if frames == 3 {
			cancel()
		}
	})
	run.Wait()

	if got := len(clock.Slept()); got != 0 {
		t.Errorf("slept %d times after overruns, expected 0", got)
	}
	st := s.Stats()
	if st.Overruns != 3 {
		t.Errorf("Overruns = %d, expected 3", st.Overruns)
	}
	if st.Busy != 75*time.Millisecond {
		t.Errorf("Busy = %v, expected 75ms", st.Busy)
	}
}

func TestSchedulerResetsEachFrame(t *testing.T) {
	clock := newFakeClock()
	s := NewScheduler(newTestFB(t), &bytes.Buffer{}, WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	var dirty bool
	run, _ := s.Start(ctx, func(fb *gfx.Framebuffer) {
		if c, _ := fb.Pixel(0, 0); c != (gfx.RGB{1, 1, 1}) {
			dirty = true
		}
		fb.SetPixel(0, 0, gfx.White)
		frames++
		if frames == 3 {
			cancel()
		}
	})
	run.Wait()

	if dirty {
		t.Error("frame started from the previous frame instead of the baseline")
	}
}

func TestSchedulerStopReturnsLastFrame(t *testing.T) {
	var out bytes.Buffer
	s := NewScheduler(newTestFB(t), &out, WithFramePeriod(time.Millisecond))

	var n atomic.Uint32
	var last atomic.Value
	run, err := s.Start(context.Background(), func(fb *gfx.Framebuffer) {
		c := gfx.RGB{uint8(n.Add(1)), 0, 0}
		fb.SetPixel(1, 1, c)
		last.Store(c)
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	run.Stop()
	run.Stop()
	waitDone(t, run.Done())

	fb, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	got, _ := fb.Pixel(1, 1)
	if want := last.Load().(gfx.RGB); got != want {
		t.Errorf("returned framebuffer pixel = %v, expected last drawn %v", got, want)
	}
	if out.Len() == 0 {
		t.Error("nothing was rendered")
	}
}

func TestSchedulerRealTimeCadence(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	s := NewScheduler(newTestFB(t), &bytes.Buffer{})

	var calls atomic.Int64
	start := time.Now()
	run, _ := s.Start(context.Background(), func(*gfx.Framebuffer) { calls.Add(1) })
	time.Sleep(160 * time.Millisecond)
	run.Stop()
	run.Wait()
	elapsed := time.Since(start)

	period := DefaultFramePeriod
	upper := int64(elapsed/period) + 1
	lower := int64(elapsed/period) / 2
	if got := calls.Load(); got > upper || got < lower {
		t.Errorf("draw called %d times in %v, expected between %d and %d", got, elapsed, lower, upper)
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	s := NewScheduler(newTestFB(t), &bytes.Buffer{}, WithClock(newFakeClock()))
	run, err := s.Start(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer run.Stop()

	if _, err := s.Start(context.Background(), nil); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, expected ErrAlreadyStarted", err)
	}
}

func TestSchedulerPanicIsolation(t *testing.T) {
	tests := []struct {
		name    string
		isolate bool
		wantErr bool
	}{
		{"isolated", true, false},
		{"fatal", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			s := NewScheduler(newTestFB(t), &bytes.Buffer{}, WithClock(clock), WithPanicIsolation(tt.isolate))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			frames := 0
			run, _ := s.Start(ctx, func(*gfx.Framebuffer) {
				frames++
				if frames == 2 {
					panic("boom")
				}
				if frames == 4 {
					cancel()
				}
			})
			_, err := run.Wait()

			var perr *PanicError
			if tt.wantErr {
				if !errors.As(err, &perr) {
					t.Fatalf("Wait() = %v, expected *PanicError", err)
				}
				if perr.Loop != "draw" || perr.Seq != 1 || perr.Value != "boom" {
					t.Errorf("PanicError = %+v", perr)
				}
				if frames != 2 {
					t.Errorf("draw called %d times, expected 2", frames)
				}
			} else {
				if err != nil {
					t.Fatalf("Wait() = %v, expected nil", err)
				}
				if frames != 4 {
					t.Errorf("draw called %d times, expected 4", frames)
				}
			}
			if got := s.Stats().Panics; got != 1 {
				t.Errorf("Panics = %d, expected 1", got)
			}
		})
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSchedulerRenderErrorStops(t *testing.T) {
	s := NewScheduler(newTestFB(t), brokenWriter{}, WithClock(newFakeClock()))
	run, _ := s.Start(context.Background(), nil)
	waitDone(t, run.Done())

	if _, err := run.Wait(); err == nil {
		t.Error("Wait() = nil after a render failure")
	}
	if got := s.Stats().Frames; got != 0 {
		t.Errorf("Frames = %d, expected 0", got)
	}
}

func TestSchedulerStatusFollowsDraw(t *testing.T) {
	var out bytes.Buffer
	frames := 0
	s := NewScheduler(newTestFB(t), &out, WithClock(newFakeClock()),
		WithStatus(func() string { return fmt.Sprintf("frame %d", frames) }))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run, _ := s.Start(ctx, func(*gfx.Framebuffer) {
		frames++
		if frames == 2 {
			cancel()
		}
	})
	if _, err := run.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}

	got := out.String()
	for _, want := range []string{"\n\x1b[0mframe 1", "\n\x1b[0mframe 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing status %q", want)
		}
	}
}
