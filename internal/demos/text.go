package demos

import (
	"strings"
	"sync"

	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/gfx"
	"github.com/vovakirdan/termfx/internal/registry"
)

func init() {
	registry.Register("text", func() registry.Demo { return &Text{} })
}

// Text previews the font and echoes typed keys.
type Text struct{}

func (*Text) ID() string      { return "text" }
func (*Text) Title() string   { return "Text" }
func (*Text) Backend() string { return "halfblock" }

// maxTyped bounds the echo buffer.
const maxTyped = 512

type textState struct {
	mu    sync.Mutex
	typed []rune
	blink int
}

// Program builds the font preview. Printable keys are echoed, enter starts
// a new line and backspace deletes. The preview drops lines until the echo
// area has room, and the echo area shows only its newest lines.
func (*Text) Program(env registry.Env) engine.Program {
	st := &textState{}
	f := env.Font
	headerLines := []string{
		"termfx font preview",
		"0123456789 !?.,:;+-*/",
		"abcdefghijklmnopqrstuvwxyz",
	}
	step := f.GlyphHeight() + 2
	accent := gfx.RGB{255, 200, 0}
	echoY := 0 // set by Init, which runs before the first Draw

	return engine.Program{
		Title: "termfx: text",
		Init: func(fb *gfx.Framebuffer) {
			n := len(headerLines)
			for n > 1 {
				_, h := f.Measure(strings.Join(headerLines[:n], "\n"))
				if h+8+2*step-2 <= fb.Height() {
					break
				}
				n--
			}
			header := strings.Join(headerLines[:n], "\n")
			_, headerH := f.Measure(header)
			echoY = headerH + 8

			fb.Bg(gfx.RGB{0, 0, 40})
			fb.Text(2, 2, gfx.RGB{180, 180, 255}, f, header)
			fb.Rectangle(0, headerH+4, fb.Width(), headerH+5, accent)
		},
		Draw: func(fb *gfx.Framebuffer) {
			st.mu.Lock()
			typed := string(st.typed)
			cursor := st.blink%30 < 15
			st.mu.Unlock()

			rows := max(1, (fb.Height()-echoY+2)/step)
			lines := strings.Split(typed, "\n")
			if len(lines) > rows {
				lines = lines[len(lines)-rows:]
			}
			fb.Text(2, echoY, gfx.White, f, strings.Join(lines, "\n"))
			if cursor {
				last := lines[len(lines)-1]
				cx := 2 + len([]rune(last))*8
				cy := echoY + (len(lines)-1)*step
				fb.Rectangle(cx, cy, cx+7, cy+f.GlyphHeight(), accent)
			}
		},
		OnKey: func(ev engine.KeyEvent) {
			st.mu.Lock()
			defer st.mu.Unlock()
			switch ev.Name {
			case "enter":
				st.typed = append(st.typed, '\n')
			case "backspace":
				if n := len(st.typed); n > 0 {
					st.typed = st.typed[:n-1]
				}
			default:
				if !ev.Alt {
					st.typed = append(st.typed, ev.Runes...)
				}
			}
			if n := len(st.typed); n > maxTyped {
				st.typed = st.typed[n-maxTyped:]
			}
		},
		Tick: func() {
			st.mu.Lock()
			st.blink++
			st.mu.Unlock()
		},
		TickPeriod: env.Config.TickPeriod,
	}
}
