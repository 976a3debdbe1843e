// Package storage provides SQLite-based persistence for run statistics.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run statistics.
type Store struct {
	db *sql.DB
}

// RunRecord is one finished engine run.
type RunRecord struct {
	ID       int64
	DemoID   string
	Backend  string
	Origin   string // "local" or the SSH user
	Frames   uint64
	Overruns uint64
	Panics   uint64
	Keys     uint64
	Ticks    uint64
	Duration time.Duration
	// Error is the run's error text, empty for a clean exit.
	Error     string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			demo_id TEXT NOT NULL,
			backend TEXT NOT NULL,
			origin TEXT NOT NULL DEFAULT 'local',
			frames INTEGER NOT NULL DEFAULT 0,
			overruns INTEGER NOT NULL DEFAULT 0,
			panics INTEGER NOT NULL DEFAULT 0,
			keys INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_demo_id ON runs(demo_id);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	if r.Origin == "" {
		r.Origin = "local"
	}
	result, err := s.db.Exec(
		`INSERT INTO runs
		 (demo_id, backend, origin, frames, overruns, panics, keys, ticks, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.DemoID, r.Backend, r.Origin,
		int64(r.Frames), int64(r.Overruns), int64(r.Panics), int64(r.Keys), int64(r.Ticks),
		r.Duration.Milliseconds(), r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentRuns retrieves the latest runs, newest first. An empty demoID
// matches every demo.
func (s *Store) RecentRuns(demoID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, demo_id, backend, origin, frames, overruns, panics, keys, ticks,
		        duration_ms, error, created_at
		 FROM runs
		 WHERE ? = '' OR demo_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		demoID, demoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationMS int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.DemoID, &r.Backend, &r.Origin,
			&r.Frames, &r.Overruns, &r.Panics, &r.Keys, &r.Ticks,
			&durationMS, &r.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// ClearRuns deletes the runs of one demo, or all runs when demoID is empty.
func (s *Store) ClearRuns(demoID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE ? = '' OR demo_id = ?", demoID, demoID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// DemoStats contains aggregated statistics for a demo.
type DemoStats struct {
	DemoID      string
	Runs        int
	Failed      int
	TotalFrames int64
	Overruns    int64
	AvgFPS      float64
	LastRun     time.Time
}

// OverrunRate returns the share of frames that missed their period.
func (d DemoStats) OverrunRate() float64 {
	if d.TotalFrames == 0 {
		return 0
	}
	return float64(d.Overruns) / float64(d.TotalFrames)
}

const statsQuery = `SELECT demo_id, COUNT(*),
		        COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(frames), 0), COALESCE(SUM(overruns), 0),
		        COALESCE(SUM(duration_ms), 0), MAX(created_at)
		 FROM runs`

// GetDemoStats retrieves aggregated statistics for a specific demo.
// A demo with no runs yields zero stats, not an error.
func (s *Store) GetDemoStats(demoID string) (*DemoStats, error) {
	row := s.db.QueryRow(statsQuery+` WHERE demo_id = ? GROUP BY demo_id`, demoID)
	st, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &DemoStats{DemoID: demoID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get demo stats: %w", err)
	}
	return st, nil
}

// GetAllDemoStats retrieves statistics for every demo that has been run.
func (s *Store) GetAllDemoStats() (map[string]*DemoStats, error) {
	rows, err := s.db.Query(statsQuery + ` GROUP BY demo_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all demo stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*DemoStats)
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats[st.DemoID] = st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStats(row scanner) (*DemoStats, error) {
	var st DemoStats
	var durationMS int64
	var lastRun any
	if err := row.Scan(&st.DemoID, &st.Runs, &st.Failed, &st.TotalFrames, &st.Overruns,
		&durationMS, &lastRun); err != nil {
		return nil, err
	}
	if durationMS > 0 {
		st.AvgFPS = float64(st.TotalFrames) / (float64(durationMS) / 1000)
	}
	st.LastRun = parseTimestamp(lastRun)
	return &st, nil
}

// parseTimestamp handles both time.Time and the string form SQLite returns
// for aggregates.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
