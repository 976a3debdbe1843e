package engine

import (
	"context"
	"errors"
	"io"
	"runtime/debug"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termfx/internal/core"
)

// DefaultQuitKeys end a run when pressed.
var DefaultQuitKeys = []string{"esc", "ctrl+c"}

// KeyEvent is one decoded key press.
type KeyEvent struct {
	Name   string      // canonical name, e.g. "a", "up", "ctrl+x", " "
	Runes  []rune      // typed characters, empty for special keys
	Alt    bool        // pressed with alt
	Action core.Action // what the keymap maps it to
}

// Dispatcher decodes keys from a reader and feeds them to a callback.
type Dispatcher struct {
	in     io.Reader
	keymap *Keymap
	quit   key.Binding
	logger *log.Logger
}

// InputOption configures a Dispatcher.
type InputOption func(*Dispatcher)

// WithQuitKeys replaces the quit keys. An empty list keeps the defaults.
func WithQuitKeys(keys ...string) InputOption {
	return func(d *Dispatcher) {
		if len(keys) > 0 {
			d.quit = key.NewBinding(key.WithKeys(keys...))
		}
	}
}

// WithKeymap replaces the default keymap.
func WithKeymap(km *Keymap) InputOption {
	return func(d *Dispatcher) {
		if km != nil {
			d.keymap = km
		}
	}
}

// WithInputLogger sets the dispatcher's logger.
func WithInputLogger(l *log.Logger) InputOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher reading from in.
func NewDispatcher(in io.Reader, opts ...InputOption) *Dispatcher {
	d := &Dispatcher{
		in:     in,
		keymap: NewKeymap(),
		quit:   key.NewBinding(key.WithKeys(DefaultQuitKeys...)),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Input is a handle on a running dispatcher.
type Input struct {
	done chan struct{}
	err  error
	quit   atomic.Bool
	keys   atomic.Uint64
	panics atomic.Uint64
}

// Done is closed when the dispatcher has stopped.
func (in *Input) Done() <-chan struct{} {
	return in.done
}

// Wait blocks until the dispatcher stops. It returns nil when a quit key was
// pressed or the context was cancelled.
func (in *Input) Wait() error {
	<-in.done
	return in.err
}

// Quit reports whether the dispatcher stopped because of a quit key.
func (in *Input) Quit() bool {
	return in.quit.Load()
}

// Keys returns the number of events delivered to the callback so far.
func (in *Input) Keys() uint64 {
	return in.keys.Load()
}

// Panics returns the number of key callbacks that panicked.
func (in *Input) Panics() uint64 {
	return in.panics.Load()
}

// Start reads keys until a quit key is pressed or ctx is cancelled. Every
// other key is passed to onKey synchronously, in arrival order. A panic in
// onKey stops the dispatcher and is returned from Wait as a *PanicError.
func (d *Dispatcher) Start(ctx context.Context, onKey func(KeyEvent)) *Input {
	in := &Input{done: make(chan struct{})}
	m := &inputModel{d: d, in: in, onKey: onKey}

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(d.in),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)

	go func() {
		defer close(in.done)
		_, err := p.Run()
		switch {
		case m.err != nil:
			in.err = m.err
		case err == nil, errors.Is(err, tea.ErrProgramKilled), errors.Is(err, context.Canceled):
		default:
			d.logger.Error("input loop failed", "err", err)
			in.err = err
		}
	}()
	return in
}

// inputModel is the bubbletea model behind a Dispatcher. It renders nothing.
type inputModel struct {
	d     *Dispatcher
	in    *Input
	onKey func(KeyEvent)
	err   error
}

func (m *inputModel) Init() tea.Cmd { return nil }

func (m *inputModel) View() string { return "" }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(k, m.d.quit) {
		m.in.quit.Store(true)
		return m, tea.Quit
	}
	if err := m.deliver(k); err != nil {
		m.err = err
		return m, tea.Quit
	}
	return m, nil
}

func (m *inputModel) deliver(k tea.KeyMsg) (err error) {
	seq := m.in.keys.Add(1)
	if m.onKey == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			m.in.panics.Add(1)
			m.d.logger.Error("key callback panicked", "key", k.String(), "panic", v)
			err = &PanicError{Loop: "key", Seq: seq, Value: v, Stack: debug.Stack()}
		}
	}()

	name := k.String()
	m.onKey(KeyEvent{
		Name:   name,
		Runes:  k.Runes,
		Alt:    k.Alt,
		Action: m.d.keymap.Lookup(name),
	})
	return nil
}
