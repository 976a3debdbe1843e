package core

import "time"

// RuntimeConfig contains configuration passed to programs at construction.
// Programs use this to size their state to the framebuffer and for
// deterministic simulation.
type RuntimeConfig struct {
	Cols        int           // Terminal columns
	Rows        int           // Terminal rows
	FramePeriod time.Duration // Target frame period of the scheduler
	TickPeriod  time.Duration // Period of the program's simulation tick
	Seed        int64         // RNG seed for deterministic behavior
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Cols:        80,
		Rows:        24,
		FramePeriod: 16 * time.Millisecond,
		TickPeriod:  16 * time.Millisecond,
		Seed:        0, // 0 means use current time
	}
}
