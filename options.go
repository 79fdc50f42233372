package swung

import (
	"go.uber.org/zap"

	"github.com/groovekit/swung/note"
)

// Dispatcher realizes a final scheduled note. Implementations also own the
// output clock the scheduler reads, so scheduling and realization can never
// drift apart.
type Dispatcher interface {
	Dispatch(n note.ScheduledNote)
	Now() float64
}

type Option func(*machineConfig)

type machineConfig struct {
	sampleRate int
	seed       int64
	log        *zap.Logger
	dispatcher Dispatcher
	pattern    *note.Pattern
	bpm        float64
	intensity  int
	mode       note.HatMode
	tracks     note.TrackConfig
}

func defaultMachineConfig() machineConfig {
	return machineConfig{
		sampleRate: 48000,
		seed:       0,
		bpm:        90,
		intensity:  60,
		mode:       note.HatFriction,
	}
}

// WithLogger installs a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(cfg *machineConfig) { cfg.log = log }
}

// WithSampleRate sets the audio output sample rate (default 48000). Ignored
// when a custom dispatcher is installed.
func WithSampleRate(rate int) Option {
	return func(cfg *machineConfig) { cfg.sampleRate = rate }
}

// WithSeed fixes the random seed so humanization and ghost placement become
// reproducible. Zero (the default) seeds from the clock.
func WithSeed(seed int64) Option {
	return func(cfg *machineConfig) { cfg.seed = seed }
}

// WithDispatcher replaces the built-in audio output, e.g. with a hardware
// MIDI sender.
func WithDispatcher(d Dispatcher) Option {
	return func(cfg *machineConfig) { cfg.dispatcher = d }
}

// WithPattern sets the initial step pattern (default: a swung backbeat).
func WithPattern(p note.Pattern) Option {
	return func(cfg *machineConfig) { cfg.pattern = &p }
}

// WithBPM sets the initial tempo. Invalid values fall back to the default.
func WithBPM(bpm float64) Option {
	return func(cfg *machineConfig) {
		if note.ValidBPM(bpm) {
			cfg.bpm = bpm
		}
	}
}

// WithIntensity sets the initial humanize intensity, 0-100.
func WithIntensity(pct int) Option {
	return func(cfg *machineConfig) { cfg.intensity = clampPct(pct) }
}

// WithHatMode sets the initial hi-hat mode.
func WithHatMode(m note.HatMode) Option {
	return func(cfg *machineConfig) { cfg.mode = m }
}

// WithTrackSettings sets the initial per-voice overrides.
func WithTrackSettings(tc note.TrackConfig) Option {
	return func(cfg *machineConfig) { cfg.tracks = tc }
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
