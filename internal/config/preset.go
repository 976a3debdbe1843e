package config

import "time"

// Preset is a named frame rate.
type Preset string

const (
	PresetSmooth   Preset = "smooth"   // ~60 Hz
	PresetBalanced Preset = "balanced" // ~30 Hz
	PresetEco      Preset = "eco"      // ~15 Hz, for slow links
)

// Presets lists the presets in order of decreasing frame rate.
func Presets() []Preset {
	return []Preset{PresetSmooth, PresetBalanced, PresetEco}
}

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool {
	_, ok := p.FramePeriod()
	return ok
}

// FramePeriod returns the preset's frame period.
func (p Preset) FramePeriod() (time.Duration, bool) {
	switch p {
	case PresetSmooth:
		return 16 * time.Millisecond, true
	case PresetBalanced:
		return 33 * time.Millisecond, true
	case PresetEco:
		return 66 * time.Millisecond, true
	default:
		return 0, false
	}
}

// ApplyPreset sets the engine preset.
func ApplyPreset(cfg *Config, p Preset) {
	cfg.Engine.Preset = p
}
