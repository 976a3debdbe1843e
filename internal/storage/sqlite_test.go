package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	run := RunRecord{
		DemoID:   "planes",
		Backend:  "halfblock",
		Frames:   600,
		Overruns: 3,
		Keys:     12,
		Ticks:    590,
		Duration: 10 * time.Second,
	}
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveRun() id = %d, expected positive", id)
	}

	runs, err := store.RecentRuns("planes", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.Frames != 600 || got.Overruns != 3 || got.Keys != 12 || got.Ticks != 590 {
		t.Errorf("counters = %+v", got)
	}
	if got.Duration != 10*time.Second {
		t.Errorf("Duration = %v, expected 10s", got.Duration)
	}
	if got.Origin != "local" {
		t.Errorf("Origin = %q, expected local", got.Origin)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
}

func TestStoreRecentRunsOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 15; i++ {
		demo := "shapes"
		if i%3 == 0 {
			demo = "text"
		}
		if _, err := store.SaveRun(RunRecord{DemoID: demo, Backend: "halfblock", Frames: uint64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.RecentRuns("", 5)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("Expected 5 runs, got %d", len(runs))
	}
	if runs[0].Frames != 15 || runs[4].Frames != 11 {
		t.Errorf("runs not newest first: first=%d last=%d", runs[0].Frames, runs[4].Frames)
	}

	text, _ := store.RecentRuns("text", 0)
	if len(text) != 5 {
		t.Errorf("Expected 5 text runs, got %d", len(text))
	}
	for _, r := range text {
		if r.DemoID != "text" {
			t.Errorf("RecentRuns(text) returned %q", r.DemoID)
		}
	}
}

func TestStoreDemoStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{DemoID: "bounce", Backend: "tile", Frames: 300, Overruns: 30, Duration: 5 * time.Second})
	store.SaveRun(RunRecord{DemoID: "bounce", Backend: "tile", Frames: 300, Duration: 5 * time.Second, Error: "boom"})
	store.SaveRun(RunRecord{DemoID: "text", Backend: "halfblock", Frames: 60, Duration: time.Second})

	st, err := store.GetDemoStats("bounce")
	if err != nil {
		t.Fatalf("GetDemoStats() failed: %v", err)
	}
	if st.Runs != 2 || st.Failed != 1 || st.TotalFrames != 600 {
		t.Errorf("stats = %+v", st)
	}
	if st.AvgFPS != 60 {
		t.Errorf("AvgFPS = %v, expected 60", st.AvgFPS)
	}
	if st.OverrunRate() != 0.05 {
		t.Errorf("OverrunRate() = %v, expected 0.05", st.OverrunRate())
	}

	empty, err := store.GetDemoStats("planes")
	if err != nil {
		t.Fatalf("GetDemoStats(no runs) failed: %v", err)
	}
	if empty.Runs != 0 || empty.DemoID != "planes" {
		t.Errorf("empty stats = %+v", empty)
	}

	all, err := store.GetAllDemoStats()
	if err != nil {
		t.Fatalf("GetAllDemoStats() failed: %v", err)
	}
	if len(all) != 2 || all["text"] == nil || all["text"].Runs != 1 {
		t.Errorf("GetAllDemoStats() = %v", all)
	}
	if all["text"].LastRun.IsZero() {
		t.Error("LastRun not parsed")
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{DemoID: "planes", Backend: "halfblock"})
	store.SaveRun(RunRecord{DemoID: "shapes", Backend: "halfblock"})

	if err := store.ClearRuns("planes"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	if runs, _ := store.RecentRuns("", 10); len(runs) != 1 || runs[0].DemoID != "shapes" {
		t.Errorf("after ClearRuns(planes): %+v", runs)
	}

	if err := store.ClearRuns(""); err != nil {
		t.Fatalf("ClearRuns(all) failed: %v", err)
	}
	if runs, _ := store.RecentRuns("", 10); len(runs) != 0 {
		t.Errorf("Expected no runs, got %d", len(runs))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"time", want, want},
		{"sqlite string", "2024-05-01 12:30:00", want},
		{"rfc3339", "2024-05-01T12:30:00Z", want},
		{"garbage", "yesterday", time.Time{}},
		{"nil", nil, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%v) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}
