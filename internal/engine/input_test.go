package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/termfx/internal/core"
)

// typeKeys writes each string as its own read so the decoder sees one key
// per chunk.
func typeKeys(t *testing.T, w *io.PipeWriter, keys ...string) {
	t.Helper()
	go func() {
		for _, k := range keys {
			if _, err := w.Write([]byte(k)); err != nil {
				return
			}
		}
	}()
}

type recorder struct {
	mu     sync.Mutex
	events []KeyEvent
}

func (r *recorder) onKey(ev KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

func TestDispatcherDeliversUntilQuit(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	rec := &recorder{}
	in := NewDispatcher(pr, WithQuitKeys("q")).Start(context.Background(), rec.onKey)
	typeKeys(t, pw, "a", "w", "q", "z")

	waitDone(t, in.Done())
	if err := in.Wait(); err != nil {
		t.Fatalf("Wait() = %v, expected nil", err)
	}
	if !in.Quit() {
		t.Error("Quit() = false after the quit key")
	}

	got := rec.names()
	if len(got) != 2 || got[0] != "a" || got[1] != "w" {
		t.Fatalf("delivered %v, expected [a w]", got)
	}
	if rec.events[1].Action != core.ActionUp {
		t.Errorf("'w' action = %v, expected Up", rec.events[1].Action)
	}
	if len(rec.events[0].Runes) != 1 || rec.events[0].Runes[0] != 'a' {
		t.Errorf("'a' runes = %v", rec.events[0].Runes)
	}
	if in.Keys() != 2 {
		t.Errorf("Keys() = %d, expected 2", in.Keys())
	}
}

func TestDispatcherContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	in := NewDispatcher(pr).Start(ctx, nil)

	time.Sleep(10 * time.Millisecond)
	cancel()

	waitDone(t, in.Done())
	if err := in.Wait(); err != nil {
		t.Errorf("Wait() = %v, expected nil on cancel", err)
	}
	if in.Quit() {
		t.Error("Quit() = true without a quit key")
	}
}

func TestDispatcherCallbackPanic(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	in := NewDispatcher(pr, WithQuitKeys("q")).Start(context.Background(), func(ev KeyEvent) {
		if ev.Name == "x" {
			panic("bad key")
		}
	})
	typeKeys(t, pw, "a", "x")

	waitDone(t, in.Done())
	var perr *PanicError
	if err := in.Wait(); !errors.As(err, &perr) {
		t.Fatalf("Wait() = %v, expected *PanicError", err)
	}
	if perr.Loop != "key" || perr.Seq != 2 {
		t.Errorf("PanicError = %+v, expected key #2", perr)
	}
	if in.Panics() != 1 {
		t.Errorf("Panics() = %d, expected 1", in.Panics())
	}
}

func TestKeymapLookup(t *testing.T) {
	km := NewKeymap()
	tests := []struct {
		name string
		want core.Action
	}{
		{"up", core.ActionUp},
		{"k", core.ActionUp},
		{"s", core.ActionDown},
		{"left", core.ActionLeft},
		{"d", core.ActionRight},
		{" ", core.ActionFire},
		{"space", core.ActionFire},
		{"enter", core.ActionConfirm},
		{"p", core.ActionPause},
		{"r", core.ActionRestart},
		{"x", core.ActionNone},
	}

	for _, tt := range tests {
		if got := km.Lookup(tt.name); got != tt.want {
			t.Errorf("Lookup(%q) = %v, expected %v", tt.name, got, tt.want)
		}
	}

	var nilMap *Keymap
	if got := nilMap.Lookup("up"); got != core.ActionNone {
		t.Errorf("nil Keymap Lookup() = %v", got)
	}
	if len(km.Help()) != 8 {
		t.Errorf("Help() has %d entries, expected 8", len(km.Help()))
	}
}
