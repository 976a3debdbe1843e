package config

import _ "embed"

//go:embed defaults/termfx.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration. It matches
// defaults/termfx.yaml and is used if that file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			FramePeriodMS:  16,
			TickPeriodMS:   16,
			QuitKeys:       []string{"esc", "ctrl+c"},
			PanicIsolation: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Address:      ":2323",
			HostKeyPath:  ".ssh/termfx_ed25519",
			IdleTimeoutS: 600,
			DefaultDemo:  "planes",
			MaxSessions:  32,
		},
	}
}
