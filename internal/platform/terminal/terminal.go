// Package terminal acquires and restores the host terminal around an engine
// run: raw mode, the alternate screen and a hidden cursor on Acquire, and the
// reverse on Release.
//
// Callers pair the two with defer so the terminal comes back on every exit
// path, including errors returned from draw or key callbacks:
//
//	g, err := terminal.Acquire(os.Stdin, os.Stdout, "termfx")
//	if err != nil {
//		return err
//	}
//	defer g.Release()
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("terminal: not a terminal")

// Enter writes the sequences that switch to the alternate screen, hide the
// cursor and set the window title. It does not touch the tty mode, so it also
// serves remote sessions whose pty is managed elsewhere.
func Enter(w io.Writer, title string) error {
	_, err := io.WriteString(w,
		ansi.SetAltScreenSaveCursorMode+
			ansi.HideCursor+
			ansi.EraseEntireScreen+
			ansi.CursorHomePosition+
			ansi.SetWindowTitle(title))
	return err
}

// Leave undoes Enter: colors reset, title cleared, main screen restored and
// cursor shown.
func Leave(w io.Writer) error {
	_, err := io.WriteString(w,
		ansi.ResetStyle+
			ansi.SetWindowTitle("")+
			ansi.ResetAltScreenSaveCursorMode+
			ansi.ShowCursor)
	return err
}

// Guard holds the terminal in raw mode until Release.
type Guard struct {
	in    *os.File
	out   *os.File
	state *term.State
	once  sync.Once
	err   error
}

// Acquire puts in into raw mode and switches out to the alternate screen.
// On any failure the terminal is left as it was.
func Acquire(in, out *os.File, title string) (*Guard, error) {
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, ErrNotTerminal
	}

	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("terminal: raw mode: %w", err)
	}

	g := &Guard{in: in, out: out, state: state}
	if err := Enter(out, title); err != nil {
		term.Restore(int(in.Fd()), state)
		return nil, fmt.Errorf("terminal: enter: %w", err)
	}
	return g, nil
}

// Release restores the terminal. It is safe to call more than once; only the
// first call does anything and every call returns its result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		leaveErr := Leave(g.out)
		restoreErr := term.Restore(int(g.in.Fd()), g.state)
		g.err = errors.Join(leaveErr, restoreErr)
		if g.err != nil {
			g.err = fmt.Errorf("terminal: release: %w", g.err)
		}
	})
	return g.err
}

// Size returns the output terminal's size in cells.
func (g *Guard) Size() (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(g.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("terminal: size: %w", err)
	}
	return cols, rows, nil
}

// Write writes frames to the terminal.
func (g *Guard) Write(p []byte) (int, error) {
	return g.out.Write(p)
}

// Input returns the terminal's key stream.
func (g *Guard) Input() io.Reader {
	return g.in
}
