package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/config"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/platform/runner"
	"github.com/vovakirdan/termfx/internal/platform/terminal"
	"github.com/vovakirdan/termfx/internal/registry"
	"github.com/vovakirdan/termfx/internal/storage"
)

var (
	flagFont   string
	flagSprite string
)

var runCmd = &cobra.Command{
	Use:   "run <demo>",
	Short: "Run a demo",
	Long: `Run the specified demo in this terminal.

The terminal is switched to raw mode and the alternate screen for the
duration of the run and restored afterwards, also when the demo fails.

Controls:
  Esc/Ctrl+C   - Quit (see engine.quit_keys)
  Arrows/WASD  - Move (demos that use them)

Examples:
  termfx run planes
  termfx run shapes --backend tile
  termfx run bounce --fps 30
  termfx run text --font ./Lat2-Terminus16.psfu
  termfx run planes --sprite ./plane.png`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagFont, "font", "", "PSF2 font file (default: built-in)")
	runCmd.Flags().StringVar(&flagSprite, "sprite", "", "Sprite image for demos that draw one")
}

func runRun(cmd *cobra.Command, args []string) {
	stats, err := runDemo(cmd.Context(), args[0])
	if err != nil {
		// The guard is released by now, so this lands on the normal screen.
		fmt.Fprintf(os.Stderr, "Error running demo: %v\n", err)
		if errors.Is(err, runner.ErrUnknownDemo) {
			fmt.Fprintln(os.Stderr, "Run 'termfx list' to see available demos.")
		}
		os.Exit(1)
	}
	fmt.Printf("%d frames, %d overruns, %d keys\n", stats.Frames, stats.Overruns, stats.Keys)
}

func runDemo(ctx context.Context, demoID string) (engine.Stats, error) {
	cfg, err := loadConfig()
	if err != nil {
		return engine.Stats{}, err
	}
	if flagFont != "" {
		cfg.Font.Path = flagFont
	}
	if flagSprite != "" {
		cfg.Assets.Sprite = flagSprite
	}

	logger, closer, err := openLog(cfg.Log, "termfx")
	if err != nil {
		return engine.Stats{}, err
	}
	defer closer.Close()

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		// Continue without storage - the demo still works
		logger.Warn("could not open statistics database", "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	r, err := runner.New(cfg, store, logger)
	if err != nil {
		return engine.Stats{}, err
	}
	if err := r.Check(demoID); err != nil {
		return engine.Stats{}, err
	}

	title := demoID
	if d, err := registry.Create(demoID); err == nil {
		title = d.Title()
	}
	return playLocal(ctx, r, demoID, title, logger)
}

// playLocal runs the demo on stdin/stdout. The guard is released on every
// return path, including panics that escape the engine.
func playLocal(ctx context.Context, r *runner.Runner, demoID, title string, logger *log.Logger) (engine.Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, err := terminal.Acquire(os.Stdin, os.Stdout, "termfx - "+title)
	if err != nil {
		return engine.Stats{}, err
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logger.Error("could not restore terminal", "err", err)
		}
	}()

	logger.Info("run started", "demo", demoID, "fps", fpsOf(r.Config()))
	stats, err := r.Run(ctx, guard, demoID, "local")
	if err != nil {
		logger.Error("run failed", "demo", demoID, "err", err)
		return stats, err
	}
	logger.Info("run finished", "demo", demoID, "frames", stats.Frames, "overruns", stats.Overruns)
	return stats, nil
}

func fpsOf(cfg config.Config) float64 {
	d := cfg.Engine.FramePeriod()
	if d <= 0 {
		return 0
	}
	return float64(1e9) / float64(d)
}
