package note

import "math"

const (
	// StepsPerBar is one bar of 16th notes.
	StepsPerBar = 16
	// StepsPerBeat is the number of 16th steps per quarter note.
	StepsPerBeat = 4
	// TicksPerQuarter is the hardware tick resolution: every final note time
	// lands on a multiple of 1/96 of a quarter note.
	TicksPerQuarter = 96

	// DefaultVelocity is the velocity of an unhumanized hit.
	DefaultVelocity = 100
)

// StepDuration returns the length of one 16th step in seconds.
func StepDuration(bpm float64) float64 {
	return 60 / bpm / StepsPerBeat
}

// TickDuration returns the length of one hardware tick in seconds.
func TickDuration(bpm float64) float64 {
	return 60 / bpm / TicksPerQuarter
}

// QuantizeToTick snaps t (seconds) to the nearest hardware tick at bpm.
// Offsets become discrete, committed displacements rather than continuous
// smoothing.
func QuantizeToTick(t, bpm float64) float64 {
	tick := TickDuration(bpm)
	return math.Round(t/tick) * tick
}

// ValidBPM reports whether bpm is usable as a tempo. Zero, negative, NaN and
// Inf are all rejected at the boundary.
func ValidBPM(bpm float64) bool {
	return !math.IsNaN(bpm) && !math.IsInf(bpm, 0) && bpm > 0
}

// ClampVelocity clamps v into the MIDI velocity range [1, 127].
func ClampVelocity(v float64) uint8 {
	r := math.Round(v)
	if r < 1 {
		return 1
	}
	if r > 127 {
		return 127
	}
	return uint8(r)
}

// Transport is the play state shared with the presentation layer.
type Transport struct {
	BPM     float64
	Playing bool
}
