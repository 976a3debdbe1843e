// Package runner launches a registered demo on a terminal: it resolves the
// demo and its assets from the configuration, runs it on the engine and
// records the outcome. The CLI and the SSH server both go through it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termfx/internal/config"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/font"
	"github.com/vovakirdan/termfx/internal/gfx"
	"github.com/vovakirdan/termfx/internal/registry"
	"github.com/vovakirdan/termfx/internal/storage"
)

// ErrUnknownDemo is returned for a demo ID that is not registered.
var ErrUnknownDemo = errors.New("unknown demo")

// Runner holds what every run shares: configuration, decoded assets and the
// statistics store.
type Runner struct {
	cfg    config.Config
	font   *font.Font
	sprite gfx.Image
	store  *storage.Store
	logger *log.Logger
}

// New loads the configured font and sprite. store may be nil, in which case
// runs are not recorded.
func New(cfg config.Config, store *storage.Store, logger *log.Logger) (*Runner, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Runner{cfg: cfg, store: store, logger: logger}

	r.font = font.Builtin()
	if cfg.Font.Path != "" {
		f, err := font.LoadFile(cfg.Font.Path)
		if err != nil {
			return nil, err
		}
		r.font = f
	}

	if cfg.Assets.Sprite != "" {
		img, err := loadSprite(cfg.Assets)
		if err != nil {
			return nil, err
		}
		r.sprite = img
	}
	return r, nil
}

// loadSprite decodes the sprite image, cuts it out of its sheet and flips it
// as configured.
func loadSprite(a config.AssetsConfig) (gfx.Image, error) {
	img, err := gfx.LoadImage(a.Sprite)
	if err != nil {
		return nil, err
	}
	if r := a.SpriteRect; len(r) == 4 {
		img = img.Section(r[0], r[1], r[2], r[3])
		if img.Height() == 0 || img.Width() == 0 {
			return nil, fmt.Errorf("runner: sprite_rect %v is outside %s", r, a.Sprite)
		}
	}
	if a.SpriteFlip {
		img = img.Mirror(false, true)
	}
	return img, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() config.Config {
	return r.cfg
}

// Check reports whether demoID can be run, suggesting close matches when it
// cannot.
func (r *Runner) Check(demoID string) error {
	if !registry.Exists(demoID) {
		return unknownDemo(demoID)
	}
	return nil
}

// Run plays demoID on t until a quit key, ctx cancellation or an error.
// origin labels the run in the statistics ("local" or an SSH user).
func (r *Runner) Run(ctx context.Context, t engine.Terminal, demoID, origin string) (engine.Stats, error) {
	demo, err := registry.Create(demoID)
	if err != nil {
		return engine.Stats{}, unknownDemo(demoID)
	}

	backendName := r.cfg.Engine.Backend
	if backendName == "" {
		backendName = demo.Backend()
	}
	backend, err := gfx.BackendByName(backendName)
	if err != nil {
		return engine.Stats{}, err
	}

	cols, rows, err := t.Size()
	if err != nil {
		return engine.Stats{}, fmt.Errorf("%w: %w", gfx.ErrTerminalSize, err)
	}
	rc := r.cfg.Runtime(cols, rows)
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}

	logger := r.logger.With("demo", demoID, "origin", origin)
	prog := demo.Program(registry.Env{
		Config: rc,
		Font:   r.font,
		Sprite: r.sprite,
		Logger: logger,
	})

	start := time.Now()
	stats, runErr := engine.Run(ctx, sizedTerminal{Terminal: t, cols: cols, rows: rows}, prog, engine.Options{
		Backend:        backend,
		FramePeriod:    rc.FramePeriod,
		QuitKeys:       r.cfg.Engine.QuitKeys,
		PanicIsolation: r.cfg.Engine.PanicIsolation,
		Logger:         logger,
	})
	r.record(demoID, backend.Name(), origin, stats, time.Since(start), runErr)
	return stats, runErr
}

func (r *Runner) record(demoID, backend, origin string, st engine.Stats, d time.Duration, runErr error) {
	if r.store == nil {
		return
	}
	rec := storage.RunRecord{
		DemoID:   demoID,
		Backend:  backend,
		Origin:   origin,
		Frames:   st.Frames,
		Overruns: st.Overruns,
		Panics:   st.Panics,
		Keys:     st.Keys,
		Ticks:    st.Ticks,
		Duration: d,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if _, err := r.store.SaveRun(rec); err != nil {
		r.logger.Warn("could not save run", "demo", demoID, "err", err)
	}
}

// sizedTerminal pins the size read at startup so the engine never re-queries it.
type sizedTerminal struct {
	engine.Terminal
	cols, rows int
}

func (s sizedTerminal) Size() (int, int, error) {
	return s.cols, s.rows, nil
}

func unknownDemo(id string) error {
	if s := registry.Suggest(id); len(s) > 0 {
		return fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownDemo, id, strings.Join(s, ", "))
	}
	return fmt.Errorf("%w %q", ErrUnknownDemo, id)
}
