// Package ghost inserts the extra, non-user-placed hits that give a pattern
// its under-the-surface movement: snare drags and chatter around backbeats,
// kick stumbles on weak 16ths, hat skips and slurps. Generation is pure given
// a random source; gating goes through the Gaussian probability helper so
// low quantities rarely fire and high quantities never quite guarantee a hit.
package ghost

import (
	"github.com/groovekit/swung/internal/groove"
	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/note"
)

const (
	// Insertion base probabilities, scaled by the per-track ghost quantity.
	snareDragProb    = 0.35
	snareChatterProb = 0.30
	kickStumbleProb  = 0.18
	hatSkipProb      = 0.22
	hatSlurpProb     = 0.15

	// Late-skew of each ghost as a fraction of a step, scaled by the offset
	// ratio. Ghosts are never perfectly on-grid.
	snareSkew = 0.18
	kickSkew  = 0.12
	hatSkew   = 0.06

	// offsetFloor keeps ghost displacement alive even at low intensity.
	offsetFloor = 0.3
)

// weak 16th candidates and their relative stumble weights, in step order so
// generation consumes randomness deterministically.
var kickStumbleSteps = []struct {
	step   int
	weight float64
}{{3, 1.0}, {7, 0.6}, {11, 0.8}, {15, 1.0}}

// Config is the state snapshot a generation run reads.
type Config struct {
	Pattern   note.Pattern
	BPM       float64
	Intensity float64 // 0.0-1.0
	Tracks    note.TrackConfig
	Mode      note.HatMode
	Groove    note.GrooveSequence
}

// Generate produces the ghost notes for one bar. Offsets are quantized to
// the hardware tick grid at cfg.BPM. Candidate selection is independent per
// voice and deterministic for a fixed random source.
func Generate(cfg Config, rng *rnd.Source) []note.GhostNote {
	ratio := cfg.Intensity
	if ratio < offsetFloor {
		ratio = offsetFloor
	}
	g := &generator{
		cfg:     cfg,
		prof:    groove.Profile(cfg.Mode),
		stepDur: note.StepDuration(cfg.BPM),
		ratio:   ratio,
		rng:     rng,
	}
	g.snare()
	g.kick()
	g.hatClosed()
	g.hatOpen()
	return g.out
}

type generator struct {
	cfg     Config
	prof    groove.ModeProfile
	stepDur float64
	ratio   float64
	rng     *rnd.Source
	out     []note.GhostNote
}

func (g *generator) quantity(v note.Voice) float64 {
	q := g.cfg.Tracks[v].GhostQuantity
	if q <= 0 {
		return 0
	}
	if q > 100 {
		q = 100
	}
	return float64(q) / 100
}

func (g *generator) add(v note.Voice, step int, offset float64, vel uint8) {
	g.out = append(g.out, note.GhostNote{
		Voice:    v,
		Step:     step,
		Offset:   note.QuantizeToTick(offset, g.cfg.BPM),
		Velocity: vel,
	})
}

// snare surrounds each explicit backbeat hit with a pre-beat drag and a
// post-beat chatter, both landing late within their step.
func (g *generator) snare() {
	qty := g.quantity(note.Snare)
	if qty == 0 {
		return
	}
	for step := 0; step < note.StepsPerBar; step++ {
		if !g.cfg.Pattern.Active(note.Snare, step) {
			continue
		}
		g.snareGhost(step-1, snareDragProb*qty)
		g.snareGhost(step+1, snareChatterProb*qty)
	}
}

func (g *generator) snareGhost(step int, prob float64) {
	if step < 0 || step >= note.StepsPerBar || g.cfg.Pattern.Active(note.Snare, step) {
		return
	}
	if !g.rng.GaussianProb(prob) {
		return
	}
	vel := g.ghostVelocity(note.Snare, step, 32, 6)
	g.add(note.Snare, step, g.stepDur*snareSkew*g.ratio, vel)
}

// kick places "stumble" ghosts on the weak 16ths, weighted per step and a
// little louder than the snare ghosts.
func (g *generator) kick() {
	qty := g.quantity(note.Kick)
	if qty == 0 {
		return
	}
	for _, c := range kickStumbleSteps {
		if g.cfg.Pattern.Active(note.Kick, c.step) {
			continue
		}
		if !g.rng.GaussianProb(kickStumbleProb * qty * c.weight) {
			continue
		}
		vel := g.ghostVelocity(note.Kick, c.step, 55, 8)
		g.add(note.Kick, c.step, g.stepDur*kickSkew*g.ratio, vel)
	}
}

// hatClosed sprinkles "skip" ghosts over the unoccupied odd steps with a
// small randomized late jitter; the mode shifts it later (limp) or earlier
// (live).
func (g *generator) hatClosed() {
	qty := g.quantity(note.HatClosed)
	if qty == 0 {
		return
	}
	for step := 1; step < note.StepsPerBar; step += 2 {
		if g.cfg.Pattern.Active(note.HatClosed, step) {
			continue
		}
		if !g.rng.GaussianProb(hatSkipProb * qty) {
			continue
		}
		jitter := g.stepDur*hatSkew*g.ratio + g.rng.Gaussian(0, g.stepDur*0.02)
		jitter += g.prof.GhostShiftClosed * g.ratio
		vel := g.ghostVelocity(note.HatClosed, step, 40, 6)
		g.add(note.HatClosed, step, jitter, vel)
	}
}

// hatOpen anticipates downbeats with "slurp" ghosts on the preceding weak
// 16th, skipped when either hat voice already occupies the step.
func (g *generator) hatOpen() {
	qty := g.quantity(note.HatOpen)
	if qty == 0 {
		return
	}
	for _, step := range []int{3, 7, 11, 15} {
		if g.cfg.Pattern.Active(note.HatClosed, step) || g.cfg.Pattern.Active(note.HatOpen, step) {
			continue
		}
		if !g.rng.GaussianProb(hatSlurpProb * qty) {
			continue
		}
		jitter := g.stepDur*hatSkew*g.ratio + g.rng.Gaussian(0, g.stepDur*0.02)
		jitter += g.prof.GhostShiftOpen * g.ratio
		vel := g.ghostVelocity(note.HatOpen, step, 45, 7)
		g.add(note.HatOpen, step, jitter, vel)
	}
}

// ghostVelocity blends the formula base with a matching groove-model note,
// then adds Gaussian spread.
func (g *generator) ghostVelocity(v note.Voice, step int, base, spread float64) uint8 {
	if m, ok := matchGroove(g.cfg.Groove, v.Pitch(), step, g.cfg.BPM); ok {
		base += (float64(m.Velocity)*0.4 - base) * 0.3 * g.cfg.Intensity
	}
	return g.rng.Velocity(base, spread)
}

func matchGroove(seq note.GrooveSequence, pitch uint8, step int, bpm float64) (note.GrooveNote, bool) {
	stepDur := note.StepDuration(bpm)
	expected := float64(step) * stepDur
	for _, n := range seq {
		if n.Pitch == pitch && abs(n.Start-expected) < stepDur {
			return n, true
		}
	}
	return note.GrooveNote{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
