package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/registry"
	"github.com/vovakirdan/termfx/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [demo]",
	Short: "Show run statistics",
	Long: `Display recorded run statistics.

Without a demo, shows a summary for every demo that has been run.
With a demo, shows its most recent runs.

Examples:
  termfx stats
  termfx stats planes
  termfx stats planes --limit 20
  termfx stats planes --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of recent runs to show")
	statsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded runs instead of showing them")
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	demoID := ""
	if len(args) == 1 {
		demoID = args[0]
		if !registry.Exists(demoID) {
			fmt.Fprintf(os.Stderr, "Error: unknown demo %q\n", demoID)
			fmt.Fprintln(os.Stderr, "Run 'termfx list' to see available demos.")
			os.Exit(1)
		}
	}

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening statistics database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagClear:
		err = store.ClearRuns(demoID)
		if err == nil {
			fmt.Println("Run statistics cleared.")
		}
	case demoID == "":
		err = printSummary(store)
	default:
		err = printRecent(store, demoID, flagLimit)
	}
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printSummary(store *storage.Store) error {
	all, err := store.GetAllDemoStats()
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render("Run statistics"))
	fmt.Println()

	if len(all) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := newTable("Demo", "Runs", "Failed", "Frames", "Avg FPS", "Overruns", "Last run")
	for _, id := range ids {
		st := all[id]
		t.Row(
			id,
			fmt.Sprint(st.Runs),
			fmt.Sprint(st.Failed),
			fmt.Sprint(st.TotalFrames),
			fmt.Sprintf("%.1f", st.AvgFPS),
			fmt.Sprintf("%.1f%%", st.OverrunRate()*100),
			st.LastRun.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println(t.Render())
	return nil
}

func printRecent(store *storage.Store, demoID string, limit int) error {
	runs, err := store.RecentRuns(demoID, limit)
	if err != nil {
		return err
	}

	title := demoID
	if d, err := registry.Create(demoID); err == nil {
		title = d.Title()
	}
	fmt.Println(headingStyle.Render("Recent runs - " + title))
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'termfx run %s' to record one.\n", demoID)
		return nil
	}

	t := newTable("Date", "Origin", "Backend", "Duration", "Frames", "Overruns", "Keys", "Result")
	for _, r := range runs {
		result := "ok"
		if r.Error != "" {
			result = r.Error
		}
		t.Row(
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Origin,
			r.Backend,
			r.Duration.Round(time.Second/10).String(),
			fmt.Sprint(r.Frames),
			fmt.Sprint(r.Overruns),
			fmt.Sprint(r.Keys),
			result,
		)
	}
	fmt.Println(t.Render())

	if st, err := store.GetDemoStats(demoID); err == nil && st.Runs > 0 {
		fmt.Println()
		fmt.Printf("Total: %d runs, %.1f fps average\n", st.Runs, st.AvgFPS)
	}
	return nil
}
