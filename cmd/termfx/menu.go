package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/platform/runner"
	"github.com/vovakirdan/termfx/internal/platform/tui"
	"github.com/vovakirdan/termfx/internal/registry"
	"github.com/vovakirdan/termfx/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick demos from an interactive menu",
	Long: `Start termfx in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to start a demo.
After a demo ends, you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Run demo
  Q/Esc        - Quit

Examples:
  termfx menu
  termfx menu --preset balanced`,
	Run: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := openLog(cfg.Log, "termfx")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		logger.Warn("could not open statistics database", "err", err)
		store = nil
	}
	defer closeStore(store)

	r, err := runner.New(cfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading assets: %v\n", err)
		return
	}

	// Menu loop
	for {
		res, err := tui.RunMenu(cmd.Context(), os.Stdin, os.Stdout, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if res.Quit {
			return
		}

		title := res.DemoID
		if d, err := registry.Create(res.DemoID); err == nil {
			title = d.Title()
		}
		if _, err := playLocal(cmd.Context(), r, res.DemoID, title, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error running demo: %v\n", err)
			return
		}
		// Loop back to menu
	}
}
