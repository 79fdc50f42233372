package note

import "fmt"

// TrackSettings are the per-voice humanization overrides.
type TrackSettings struct {
	// SwingLocked forces grid-exact timing for the voice at any intensity.
	SwingLocked bool
	// GhostQuantity gates ghost-note insertion for the voice, 0-100.
	GhostQuantity int
}

// TrackConfig holds the settings of all four voices.
type TrackConfig [NumVoices]TrackSettings

// HatMode selects the hi-hat feel. It alters push-pull direction and swing
// multipliers for the hat voices, and in live mode auto-locks the kick.
type HatMode int

const (
	// HatFriction keeps the hats rigid so they grind against the lagging kick.
	HatFriction HatMode = iota
	// HatLimp lets the closed hat drag behind the grid.
	HatLimp
	// HatLive pushes both hats ahead of the grid and locks the kick.
	HatLive
)

var hatModeNames = [...]string{"friction", "limp", "live"}

func (m HatMode) String() string {
	if m < 0 || int(m) >= len(hatModeNames) {
		return fmt.Sprintf("HatMode(%d)", int(m))
	}
	return hatModeNames[m]
}

// ParseHatMode resolves a mode by name.
func ParseHatMode(name string) (HatMode, error) {
	for i, n := range hatModeNames {
		if n == name {
			return HatMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown hat mode %q (expected friction|limp|live)", name)
}
