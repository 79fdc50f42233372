// Package groove computes humanized timing and velocity for single note
// occurrences. Humanize is a pure function of its inputs plus a caller-owned
// random source; it layers a fixed push-pull bias, blended tuplet swing, a
// groove-model deviation and micro jitter, then commits the sum to the
// hardware tick grid.
package groove

import (
	"math"

	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/note"
)

const (
	// Above this tempo, offsets are computed against a capped step length so
	// their proportions stay tempo-independent.
	bpmCeiling = 96.0

	kickLagMin    = 0.015 // seconds at zero intensity
	kickLagSpan   = 0.030 // additional lag at full intensity
	kickJitter    = 0.20  // ±20% multiplicative jitter on the kick lag
	straightPos   = 0.50
	septupletPos  = 0.57
	quintupletPos = 0.60

	microBlend    = 0.35  // weight of the groove note's own deviation
	microClamp    = 0.010 // groove-derived jitter never exceeds ±10 ms
	microAmpMin   = 0.002 // synthesized jitter amplitude at zero intensity
	microAmpMax   = 0.008 // and at full intensity
	velocityBlend = 0.6   // weight of the groove note's velocity
)

// Params is the immutable snapshot Humanize reads.
type Params struct {
	Voice     note.Voice
	Step      int
	GridTime  float64 // absolute output-clock time of the grid slot
	BPM       float64 // actual tempo; quantization always uses this
	Intensity float64 // 0.0-1.0
	Groove    note.GrooveSequence
	Settings  note.TrackSettings
	Mode      note.HatMode
}

// Humanize returns the deviated (time, velocity) for one note occurrence.
// When the voice is swing-locked, auto-locked by the mode, or intensity is
// zero, the grid time and default velocity come back untouched.
func Humanize(p Params, rng *rnd.Source) (float64, uint8) {
	prof := Profile(p.Mode)
	locked := p.Settings.SwingLocked || (prof.KickAutoLock && p.Voice == note.Kick)
	if locked || p.Intensity <= 0 {
		return p.GridTime, note.DefaultVelocity
	}

	effBPM := math.Min(p.BPM, bpmCeiling)
	stepDur := note.StepDuration(effBPM)

	offset := pushPull(p.Voice, prof, p.Intensity, rng)
	offset += tupletSwing(p.Voice, p.Step, prof, p.Intensity, stepDur)

	match, ok := matchGroove(p.Groove, p.Voice.Pitch(), p.Step, p.BPM)
	if ok {
		deviation := match.Start - float64(p.Step)*note.StepDuration(p.BPM)
		offset += deviation * p.Intensity * prof.SwingMult[p.Voice]
		offset += clamp(deviation, microClamp) * microBlend * p.Intensity
	} else {
		amp := microAmpMin + (microAmpMax-microAmpMin)*p.Intensity
		offset += rng.GaussianClamped(0, amp/2, amp)
	}

	// The grid slot is already tick-aligned, so quantizing the offset keeps
	// the final timestamp on the tick grid of the actual tempo.
	when := p.GridTime + note.QuantizeToTick(offset, p.BPM)
	return when, velocity(p, match, ok, rng)
}

// pushPull returns the instrument-specific directional bias in seconds.
func pushPull(v note.Voice, prof ModeProfile, intensity float64, rng *rnd.Source) float64 {
	switch v {
	case note.Kick:
		lag := kickLagMin + kickLagSpan*intensity
		return lag * (1 + kickJitter*(2*rng.Float64()-1))
	case note.Snare:
		return prof.SnarePush * intensity
	case note.HatClosed:
		return prof.HatClosedPush * intensity
	case note.HatOpen:
		return prof.HatOpenPush * intensity
	}
	return 0
}

// tupletSwing displaces odd (off-grid) steps from the straight 8th-note
// subdivision toward septuplet, then quintuplet positions as intensity grows.
func tupletSwing(v note.Voice, step int, prof ModeProfile, intensity, stepDur float64) float64 {
	if step%2 == 0 {
		return 0
	}
	var pos float64
	if intensity <= 0.5 {
		pos = straightPos + (septupletPos-straightPos)*(intensity/0.5)
	} else {
		pos = septupletPos + (quintupletPos-septupletPos)*((intensity-0.5)/0.5)
	}
	ease := 1 - math.Pow(1-intensity, 3)
	pairDur := 2 * stepDur
	return (pos - straightPos) * pairDur * ease * prof.SwingMult[v]
}

// matchGroove finds a groove-model note sharing the pitch within one step of
// the expected grid position.
func matchGroove(seq note.GrooveSequence, pitch uint8, step int, bpm float64) (note.GrooveNote, bool) {
	stepDur := note.StepDuration(bpm)
	expected := float64(step) * stepDur
	for _, g := range seq {
		if g.Pitch == pitch && math.Abs(g.Start-expected) < stepDur {
			return g, true
		}
	}
	return note.GrooveNote{}, false
}

func velocity(p Params, match note.GrooveNote, ok bool, rng *rnd.Source) uint8 {
	if p.Voice == note.HatClosed {
		return hatVelocity(p.Step, p.Intensity, rng)
	}
	v := float64(note.DefaultVelocity)
	if ok {
		v += (float64(match.Velocity) - v) * velocityBlend * p.Intensity
	}
	return note.ClampVelocity(v)
}

// hatVelocity applies position-based amplitude modulation to the closed hat:
// accented downbeats, softer even upbeats, softest odd 16ths.
func hatVelocity(step int, intensity float64, rng *rnd.Source) uint8 {
	var base float64
	switch {
	case step%4 == 0:
		base = 113 // downbeat accent, 100-127
	case step%2 == 0:
		base = 60 // even upbeat, 50-70
	default:
		base = 50 // odd 16th, 40-60
	}
	return note.ClampVelocity(base + rng.Gaussian(0, 5*intensity))
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
