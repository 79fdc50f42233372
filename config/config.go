package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groovekit/swung/note"
)

// TrackConfig stores per-voice overrides for one drum track.
type TrackConfig struct {
	Grid          string `json:"grid,omitempty"` // 16 chars, 'x' hit / '-' rest
	SwingLocked   bool   `json:"swingLocked,omitempty"`
	GhostQuantity int    `json:"ghostQuantity,omitempty"`
}

// MIDIConfig defines the external MIDI output.
type MIDIConfig struct {
	PortName string `json:"portName,omitempty"`
	Enabled  bool   `json:"enabled,omitempty"`
}

// AudioConfig stores audio output preferences.
type AudioConfig struct {
	SampleRate   int     `json:"sampleRate,omitempty"`
	MasterVolume float64 `json:"masterVolume,omitempty"`
	SampleDir    string  `json:"sampleDir,omitempty"` // wav samples, synth fallback when empty
}

// Config is the main configuration structure.
type Config struct {
	BPM       float64                `json:"bpm,omitempty"`
	Intensity int                    `json:"intensity,omitempty"`
	HatMode   string                 `json:"hatMode,omitempty"`
	Seed      int64                  `json:"seed,omitempty"`
	Tracks    map[string]TrackConfig `json:"tracks,omitempty"`
	MIDI      MIDIConfig             `json:"midi,omitempty"`
	Audio     AudioConfig            `json:"audio,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	pat := note.BackbeatPattern()
	tracks := make(map[string]TrackConfig, note.NumVoices)
	for v := note.Voice(0); v < note.NumVoices; v++ {
		tracks[v.String()] = TrackConfig{Grid: pat.Grid(v)}
	}
	return &Config{
		BPM:       90,
		Intensity: 60,
		HatMode:   note.HatFriction.String(),
		Tracks:    tracks,
		Audio: AudioConfig{
			SampleRate:   48000,
			MasterVolume: 1.0,
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "swung"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config from an explicit path, or returns defaults if the
// file does not exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Pattern assembles the step pattern from the per-track grids. Tracks without
// a grid stay silent.
func (c *Config) Pattern() (note.Pattern, error) {
	var p note.Pattern
	for name, tc := range c.Tracks {
		if tc.Grid == "" {
			continue
		}
		v, err := note.ParseVoice(name)
		if err != nil {
			return p, fmt.Errorf("track %q: %w", name, err)
		}
		row, err := note.ParseGrid(tc.Grid)
		if err != nil {
			return p, fmt.Errorf("track %q: %w", name, err)
		}
		for step, on := range row {
			p.Set(v, step, on)
		}
	}
	return p, nil
}

// TrackSettings assembles the per-voice playback overrides.
func (c *Config) TrackSettings() (note.TrackConfig, error) {
	var tc note.TrackConfig
	for name, t := range c.Tracks {
		v, err := note.ParseVoice(name)
		if err != nil {
			return tc, fmt.Errorf("track %q: %w", name, err)
		}
		tc[v] = note.TrackSettings{
			SwingLocked:   t.SwingLocked,
			GhostQuantity: t.GhostQuantity,
		}
	}
	return tc, nil
}

// Mode parses the configured hi-hat mode, falling back to the default when
// unset.
func (c *Config) Mode() (note.HatMode, error) {
	if c.HatMode == "" {
		return note.HatFriction, nil
	}
	return note.ParseHatMode(c.HatMode)
}
