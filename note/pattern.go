package note

import (
	"fmt"
	"strings"
)

// Pattern is the explicit step grid: per voice, one bar of 16th steps.
// It is mutated by the editing layer and read as an immutable snapshot by the
// timing core.
type Pattern [NumVoices][StepsPerBar]bool

// Active reports whether the voice has an explicit hit at step.
func (p *Pattern) Active(v Voice, step int) bool {
	return p[v][step%StepsPerBar]
}

// Set toggles an explicit hit.
func (p *Pattern) Set(v Voice, step int, on bool) {
	p[v][step%StepsPerBar] = on
}

// Empty reports whether no step of any voice is active.
func (p *Pattern) Empty() bool {
	for v := range p {
		for _, on := range p[v] {
			if on {
				return false
			}
		}
	}
	return true
}

// Grid renders one voice row as a 16 character hit grid ("x---x---...").
func (p *Pattern) Grid(v Voice) string {
	var b strings.Builder
	for _, on := range p[v] {
		if on {
			b.WriteByte('x')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// ParseGrid parses a 16 character hit grid. 'x', 'X' and 'o' mark hits,
// '-' and '.' rests.
func ParseGrid(grid string) ([StepsPerBar]bool, error) {
	var row [StepsPerBar]bool
	if len(grid) != StepsPerBar {
		return row, fmt.Errorf("grid must be %d characters, got %d", StepsPerBar, len(grid))
	}
	for i := 0; i < StepsPerBar; i++ {
		switch grid[i] {
		case 'x', 'X', 'o':
			row[i] = true
		case '-', '.':
		default:
			return row, fmt.Errorf("grid position %d: unexpected %q", i, grid[i])
		}
	}
	return row, nil
}

// BackbeatPattern is a swung hip-hop default: kick on 0/7/10, snare backbeats,
// closed hats on 8ths.
func BackbeatPattern() Pattern {
	var p Pattern
	kick, _ := ParseGrid("x------x--x-----")
	snare, _ := ParseGrid("----x-------x---")
	hat, _ := ParseGrid("x-x-x-x-x-x-x-x-")
	p[Kick] = kick
	p[Snare] = snare
	p[HatClosed] = hat
	return p
}
