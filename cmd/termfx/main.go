// termfx draws pixel graphics in the terminal.
//
// Usage:
//
//	termfx list              - List available demos
//	termfx run <demo>        - Run a demo in this terminal
//	termfx menu              - Pick demos from an interactive menu
//	termfx font [path]       - Inspect a PSF2 font
//	termfx stats [demo]      - Show recorded run statistics
//	termfx serve             - Serve demos over SSH
//
// Global flags:
//
//	--config <path>   - Config file (default search: ~/.termfx/config.yaml, ./configs/termfx.yaml)
//	--backend <name>  - halfblock or tile
//	--preset <name>   - smooth, balanced or eco
//	--fps <rate>      - Frame rate, overrides preset and config
//	--seed <value>    - RNG seed for demos (0 = time based)
//	--db <path>       - Run statistics database (default: ~/.termfx/termfx.db)
//	--log <path>      - Log file (default: ~/.termfx/termfx.log)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/config"

	// Import demos to register them
	_ "github.com/vovakirdan/termfx/internal/demos"
)

var (
	// Global flags
	flagConfig  string
	flagBackend string
	flagPreset  string
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagLogPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "termfx",
	Short: "termfx - pixel graphics in your terminal",
	Long: `termfx turns the terminal into a small pixel framebuffer, either with
truecolor half-block characters (two pixels per cell) or with 16-color tiles.

Available commands:
  list     - Show all available demos
  run      - Run a demo in this terminal
  menu     - Interactive demo picker
  font     - Inspect a PSF2 font and preview its glyphs
  stats    - View recorded run statistics
  serve    - Start SSH server to show demos remotely

Examples:
  termfx list
  termfx run planes
  termfx run bounce --preset eco
  termfx run text --font ./Lat2-Terminus16.psfu
  termfx serve --ssh :2323
  termfx stats planes`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Render backend: halfblock, tile (default: per demo)")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Frame rate preset: smooth, balanced, eco")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = from preset or config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run statistics database")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Path to log file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(fontCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configuration file and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, _, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	overrides{
		backend: flagBackend,
		preset:  flagPreset,
		fps:     flagFPS,
		seed:    flagSeed,
		dbPath:  flagDBPath,
		logPath: flagLogPath,
	}.apply(&cfg)
	return cfg, cfg.Validate()
}

// overrides holds command-line values that take precedence over the file.
// Zero values leave the file's setting alone.
type overrides struct {
	backend string
	preset  string
	fps     int
	seed    int64
	dbPath  string
	logPath string
}

func (o overrides) apply(cfg *config.Config) {
	if o.backend != "" {
		cfg.Engine.Backend = o.backend
	}
	if o.preset != "" {
		config.ApplyPreset(cfg, config.Preset(o.preset))
	}
	if o.fps > 0 {
		// An explicit rate beats any preset.
		cfg.Engine.Preset = ""
		cfg.Engine.FramePeriodMS = max(1, int(time.Second/time.Duration(o.fps)/time.Millisecond))
	}
	if o.seed != 0 {
		cfg.Engine.Seed = o.seed
	}
	if o.dbPath != "" {
		cfg.Storage.DBPath = o.dbPath
	}
	if o.logPath != "" {
		cfg.Log.Path = o.logPath
	}
}

// dbPath returns the configured database path or the per-user default.
func dbPath(cfg config.Config) string {
	if cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath
	}
	return "~/" + config.DirName + "/termfx.db"
}
