// Package note holds the shared data model of the timing core: the four
// percussion voices, the step pattern, timing math on the hardware tick grid,
// and the note records exchanged between the humanize engine, the groove
// model, and the output dispatchers.
package note

import "fmt"

// Voice identifies one of the four fixed percussion voices.
type Voice int

const (
	Kick Voice = iota
	Snare
	HatClosed
	HatOpen

	NumVoices = 4
)

// General MIDI drum pitches, one per voice.
var voicePitches = [NumVoices]uint8{36, 38, 42, 46}

var voiceNames = [NumVoices]string{"kick", "snare", "hat-closed", "hat-open"}

func (v Voice) String() string {
	if v < 0 || v >= NumVoices {
		return fmt.Sprintf("Voice(%d)", int(v))
	}
	return voiceNames[v]
}

// Pitch returns the MIDI note number for the voice.
func (v Voice) Pitch() uint8 {
	return voicePitches[v]
}

// VoiceForPitch maps a MIDI note number back to a voice.
func VoiceForPitch(pitch uint8) (Voice, bool) {
	for v, p := range voicePitches {
		if p == pitch {
			return Voice(v), true
		}
	}
	return 0, false
}

// ParseVoice resolves a voice by name, accepting a few common aliases.
func ParseVoice(name string) (Voice, error) {
	switch name {
	case "kick", "bd":
		return Kick, nil
	case "snare", "sd":
		return Snare, nil
	case "hat-closed", "hat", "chh":
		return HatClosed, nil
	case "hat-open", "ohh":
		return HatOpen, nil
	}
	return 0, fmt.Errorf("unknown voice %q", name)
}

// GrooveNote is one entry of a groove-model response. Start is in seconds,
// relative to the start of the pattern.
type GrooveNote struct {
	Pitch    uint8
	Start    float64
	Velocity uint8
}

// GrooveSequence is an immutable snapshot of a groove-model response. It is
// replaced wholesale on each new response, never edited in place.
type GrooveSequence []GrooveNote

// GhostNote is an extra, probabilistically inserted hit that is not present
// in the explicit pattern. Offset is the tick-quantized displacement from the
// start of its step, in seconds at the tempo the ghost was generated for.
type GhostNote struct {
	Voice    Voice
	Step     int
	Offset   float64
	Velocity uint8
}

// ScheduledNote is a final (time, pitch, velocity) triple, consumed exactly
// once by an output dispatcher. When is absolute output-clock seconds.
type ScheduledNote struct {
	When     float64
	Pitch    uint8
	Velocity uint8
	Ghost    bool
}
