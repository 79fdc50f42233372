package groove

import "github.com/groovekit/swung/note"

// ModeProfile bundles every behavior the hi-hat mode influences: push-pull
// direction, swing multipliers and ghost-note jitter shifts. Selecting the
// whole record once per computation keeps the per-mode branches from
// drifting apart.
type ModeProfile struct {
	// KickAutoLock forces grid-exact kick timing (live mode).
	KickAutoLock bool

	// SwingMult scales the tuplet-swing displacement per voice.
	SwingMult [note.NumVoices]float64

	// Push-pull magnitudes at full intensity, in seconds. Negative values
	// rush ahead of the grid, positive values drag behind it. The kick's
	// lag is voice-fixed and lives in the engine, not the profile.
	SnarePush     float64
	HatClosedPush float64
	HatOpenPush   float64

	// Ghost jitter shifts at full intensity, in seconds, added to the
	// late-skew of hat ghost notes.
	GhostShiftClosed float64
	GhostShiftOpen   float64
}

var profiles = [...]ModeProfile{
	// Friction: hats stay rigid and grind against the dragging kick.
	note.HatFriction: {
		SwingMult:     [note.NumVoices]float64{note.Kick: 1.0, note.Snare: 0.2, note.HatClosed: 0.3, note.HatOpen: 0.3},
		SnarePush:     -0.006,
		HatClosedPush: 0,
		HatOpenPush:   0,
	},
	// Limp: the closed hat drags behind the beat.
	note.HatLimp: {
		SwingMult:        [note.NumVoices]float64{note.Kick: 1.0, note.Snare: 0.2, note.HatClosed: 0.5, note.HatOpen: 0.4},
		SnarePush:        -0.004,
		HatClosedPush:    0.008,
		HatOpenPush:      0,
		GhostShiftClosed: 0.006,
	},
	// Live: both hats rush and the kick is pinned to the grid.
	note.HatLive: {
		KickAutoLock:     true,
		SwingMult:        [note.NumVoices]float64{note.Kick: 1.0, note.Snare: 0.2, note.HatClosed: 0.4, note.HatOpen: 0.4},
		SnarePush:        -0.009,
		HatClosedPush:    -0.005,
		HatOpenPush:      -0.005,
		GhostShiftClosed: -0.005,
		GhostShiftOpen:   -0.006,
	},
}

// Profile returns the strategy record for a hi-hat mode. Unknown modes fall
// back to friction.
func Profile(m note.HatMode) ModeProfile {
	if m < 0 || int(m) >= len(profiles) {
		return profiles[note.HatFriction]
	}
	return profiles[m]
}
