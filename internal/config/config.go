// Package config provides YAML-based configuration loading for termfx:
// engine pacing, assets, storage, logging and the SSH server.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/gfx"
)

// Config is the whole configuration file.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Font    FontConfig    `yaml:"font"`
	Assets  AssetsConfig  `yaml:"assets"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Serve   ServeConfig   `yaml:"serve"`
}

// EngineConfig controls the frame loop, the tick loop and input.
type EngineConfig struct {
	Backend        string   `yaml:"backend"`         // "halfblock" or "tile"; empty uses the demo's choice
	Preset         Preset   `yaml:"preset"`          // overrides frame_period_ms when set
	FramePeriodMS  int      `yaml:"frame_period_ms"` // target frame period
	TickPeriodMS   int      `yaml:"tick_period_ms"`  // simulation tick period
	QuitKeys       []string `yaml:"quit_keys"`
	PanicIsolation bool     `yaml:"panic_isolation"` // keep running when a callback panics
	Seed           int64    `yaml:"seed"`            // 0 means time-based
}

// FontConfig selects the PSF2 font.
type FontConfig struct {
	Path string `yaml:"path"` // empty uses the built-in font
}

// AssetsConfig lists image assets used by demos.
type AssetsConfig struct {
	Sprite     string `yaml:"sprite"`      // plane sprite; empty uses the drawn one
	SpriteRect []int  `yaml:"sprite_rect"` // [x1, y1, x2, y2] cut from a sprite sheet; empty uses the whole image
	SpriteFlip bool   `yaml:"sprite_flip"` // mirror the sprite left to right
}

// StorageConfig locates the run statistics database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"` // empty uses ~/.termfx/termfx.db
}

// LogConfig configures the log file.
type LogConfig struct {
	Path  string `yaml:"path"`  // empty uses ~/.termfx/termfx.log
	Level string `yaml:"level"` // debug, info, warn, error
}

// ServeConfig configures the SSH server.
type ServeConfig struct {
	Address      string `yaml:"address"`
	HostKeyPath  string `yaml:"host_key_path"`
	IdleTimeoutS int    `yaml:"idle_timeout_s"`
	DefaultDemo  string `yaml:"default_demo"`
	MaxSessions  int    `yaml:"max_sessions"`
}

// FramePeriod returns the effective frame period, preset first.
func (e EngineConfig) FramePeriod() time.Duration {
	if d, ok := e.Preset.FramePeriod(); ok {
		return d
	}
	return time.Duration(e.FramePeriodMS) * time.Millisecond
}

// TickPeriod returns the tick period.
func (e EngineConfig) TickPeriod() time.Duration {
	return time.Duration(e.TickPeriodMS) * time.Millisecond
}

// IdleTimeout returns the SSH idle timeout.
func (s ServeConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutS) * time.Second
}

// Runtime builds the runtime config handed to demos for a cols×rows terminal.
func (c Config) Runtime(cols, rows int) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.Cols, rc.Rows = cols, rows
	if d := c.Engine.FramePeriod(); d > 0 {
		rc.FramePeriod = d
	}
	if d := c.Engine.TickPeriod(); d > 0 {
		rc.TickPeriod = d
	}
	rc.Seed = c.Engine.Seed
	return rc
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Engine.Backend != "" {
		if _, err := gfx.BackendByName(c.Engine.Backend); err != nil {
			return fmt.Errorf("config: engine.backend: %w", err)
		}
	}
	if c.Engine.Preset != "" && !c.Engine.Preset.Valid() {
		return fmt.Errorf("config: engine.preset: unknown preset %q", c.Engine.Preset)
	}
	if c.Engine.FramePeriodMS < 0 || c.Engine.TickPeriodMS < 0 {
		return fmt.Errorf("config: engine periods must not be negative")
	}
	if r := c.Assets.SpriteRect; len(r) != 0 {
		if len(r) != 4 {
			return fmt.Errorf("config: assets.sprite_rect: want [x1, y1, x2, y2], got %d values", len(r))
		}
		if r[0] < 0 || r[1] < 0 || r[2] <= r[0] || r[3] <= r[1] {
			return fmt.Errorf("config: assets.sprite_rect: empty rectangle %v", r)
		}
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level: unknown level %q", c.Log.Level)
	}
	return nil
}
