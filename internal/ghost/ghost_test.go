package ghost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/note"
)

func backbeatConfig() Config {
	return Config{
		Pattern:   note.BackbeatPattern(),
		BPM:       90,
		Intensity: 0.8,
	}
}

func TestZeroQuantityProducesNoGhosts(t *testing.T) {
	cfg := backbeatConfig()
	// All quantities default to zero.
	for _, intensity := range []float64{0, 0.5, 1.0} {
		cfg.Intensity = intensity
		ghosts := Generate(cfg, rnd.New(1))
		assert.Empty(t, ghosts)
	}
}

func TestZeroQuantityPerTrack(t *testing.T) {
	cfg := backbeatConfig()
	cfg.Tracks[note.Snare].GhostQuantity = 100
	cfg.Tracks[note.HatClosed].GhostQuantity = 100
	ghosts := Generate(cfg, rnd.New(2))
	for _, g := range ghosts {
		assert.NotEqual(t, note.Kick, g.Voice, "kick quantity is zero")
		assert.NotEqual(t, note.HatOpen, g.Voice, "open hat quantity is zero")
	}
}

func TestSnareCandidateSteps(t *testing.T) {
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 0.5
	cfg.Pattern.Set(note.Snare, 4, true)
	cfg.Pattern.Set(note.Snare, 12, true)
	cfg.Tracks[note.Snare].GhostQuantity = 100

	seen := map[int]bool{}
	for trial := int64(0); trial < 400; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			require.Equal(t, note.Snare, g.Voice)
			seen[g.Step] = true
		}
	}
	assert.Equal(t, map[int]bool{3: true, 5: true, 11: true, 13: true}, seen)
}

func TestSnareInsertionRateTracksGate(t *testing.T) {
	// Snare active at {4,12}, quantity 100: drags at {3,11} gate at the drag
	// base probability. Measure the empirical rate against the gate itself.
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 0.5
	cfg.Pattern.Set(note.Snare, 4, true)
	cfg.Pattern.Set(note.Snare, 12, true)
	cfg.Tracks[note.Snare].GhostQuantity = 100

	const trials = 10000
	drags := 0
	for trial := int64(0); trial < trials; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			if g.Step == 3 || g.Step == 11 {
				drags++
			}
		}
	}
	gate := rnd.New(99)
	expected := 0
	for i := 0; i < trials*2; i++ {
		if gate.GaussianProb(snareDragProb) {
			expected++
		}
	}
	assert.InDelta(t, float64(expected)/float64(trials*2), float64(drags)/float64(trials*2), 0.03)
}

func TestGhostsNeverOnOccupiedSteps(t *testing.T) {
	cfg := backbeatConfig()
	for v := note.Voice(0); v < note.NumVoices; v++ {
		cfg.Tracks[v].GhostQuantity = 100
	}
	for trial := int64(0); trial < 200; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			assert.False(t, cfg.Pattern.Active(g.Voice, g.Step),
				"ghost %v on explicit step %d", g.Voice, g.Step)
		}
	}
}

func TestGhostOffsetsQuantizedAndOffGrid(t *testing.T) {
	cfg := backbeatConfig()
	for v := note.Voice(0); v < note.NumVoices; v++ {
		cfg.Tracks[v].GhostQuantity = 100
	}
	tick := note.TickDuration(cfg.BPM)
	for trial := int64(0); trial < 200; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			ticks := g.Offset / tick
			assert.InDelta(t, math.Round(ticks), ticks, 1e-9, "offset on tick grid")
		}
	}
}

func TestSnareGhostsLandLate(t *testing.T) {
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 1.0
	cfg.Pattern.Set(note.Snare, 4, true)
	cfg.Tracks[note.Snare].GhostQuantity = 100

	stepDur := note.StepDuration(cfg.BPM)
	found := false
	for trial := int64(0); trial < 100; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			found = true
			assert.InDelta(t, stepDur*snareSkew, g.Offset, note.TickDuration(cfg.BPM)/2+1e-9)
		}
	}
	require.True(t, found, "expected at least one ghost across trials")
}

func TestOffsetFloorKeepsLowIntensityGhostsOffGrid(t *testing.T) {
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 0.05 // below the 0.3 floor
	cfg.Pattern.Set(note.Snare, 4, true)
	cfg.Tracks[note.Snare].GhostQuantity = 100

	floorOffset := note.StepDuration(cfg.BPM) * snareSkew * 0.3
	for trial := int64(0); trial < 100; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			assert.InDelta(t, floorOffset, g.Offset, note.TickDuration(cfg.BPM)/2+1e-9)
			assert.NotZero(t, g.Offset)
		}
	}
}

func TestOpenHatSlurpSkippedWhenHatsOccupy(t *testing.T) {
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 0.8
	cfg.Tracks[note.HatOpen].GhostQuantity = 100
	// Closed hat occupies 3 and 7; open hat occupies 11.
	cfg.Pattern.Set(note.HatClosed, 3, true)
	cfg.Pattern.Set(note.HatClosed, 7, true)
	cfg.Pattern.Set(note.HatOpen, 11, true)

	for trial := int64(0); trial < 300; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			assert.Equal(t, 15, g.Step, "only the free downbeat anticipation remains")
		}
	}
}

func TestModeShiftsHatGhostJitter(t *testing.T) {
	var cfg Config
	cfg.BPM = 90
	cfg.Intensity = 1.0
	cfg.Tracks[note.HatClosed].GhostQuantity = 100

	mean := func(mode note.HatMode) float64 {
		cfg.Mode = mode
		var sum float64
		var n int
		for trial := int64(0); trial < 500; trial++ {
			for _, g := range Generate(cfg, rnd.New(trial)) {
				sum += g.Offset
				n++
			}
		}
		require.NotZero(t, n)
		return sum / float64(n)
	}

	friction := mean(note.HatFriction)
	limp := mean(note.HatLimp)
	live := mean(note.HatLive)
	assert.Greater(t, limp, friction, "limp shifts skips later")
	assert.Less(t, live, friction, "live shifts skips earlier")
}

func TestGhostVelocityRange(t *testing.T) {
	cfg := backbeatConfig()
	for v := note.Voice(0); v < note.NumVoices; v++ {
		cfg.Tracks[v].GhostQuantity = 100
	}
	for trial := int64(0); trial < 300; trial++ {
		for _, g := range Generate(cfg, rnd.New(trial)) {
			assert.GreaterOrEqual(t, g.Velocity, uint8(1))
			assert.LessOrEqual(t, g.Velocity, uint8(127))
		}
	}
}

func TestDeterministicForFixedSeed(t *testing.T) {
	cfg := backbeatConfig()
	for v := note.Voice(0); v < note.NumVoices; v++ {
		cfg.Tracks[v].GhostQuantity = 70
	}
	a := Generate(cfg, rnd.New(1234))
	b := Generate(cfg, rnd.New(1234))
	assert.Equal(t, a, b)
}
