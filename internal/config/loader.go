package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory for config, logs and the database.
const DirName = ".termfx"

// Load loads the configuration.
// Search order: customPath -> ~/.termfx/config.yaml -> ./configs/termfx.yaml -> embedded default.
// Files found later in the order are not merged; the first readable one wins.
// Keys missing from that file keep their default values.
func Load(customPath string) (Config, string, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, "", fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, customPath, cfg.Validate()
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{UserPath("config.yaml"), filepath.Join("configs", "termfx.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed := DefaultConfig()
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		return parsed, path, parsed.Validate()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return DefaultConfig(), "", nil // Fallback to hardcoded if embed fails
	}
	return cfg, "", nil
}

// UserPath returns a path inside ~/.termfx, or empty if home is unavailable.
func UserPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName, name)
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}
