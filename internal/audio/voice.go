package audio

import (
	"math"

	"github.com/groovekit/swung/note"
)

// Synthesized fallback voices, used whenever a voice has no preloaded
// sample. Each renderer produces a short mono hit at the given sample rate.

// RenderVoice synthesizes the fallback hit for a drum voice.
func RenderVoice(v note.Voice, sampleRate int) []float32 {
	switch v {
	case note.Kick:
		return renderKick(sampleRate)
	case note.Snare:
		return renderSnare(sampleRate)
	case note.HatClosed:
		return renderHat(sampleRate, 0.060, 40)
	case note.HatOpen:
		return renderHat(sampleRate, 0.320, 9)
	}
	return nil
}

// RenderTone synthesizes a short sine at a MIDI pitch, the last resort for a
// pitch that maps to no known voice.
func RenderTone(pitch uint8, sampleRate int) []float32 {
	freq := 440 * math.Pow(2, (float64(pitch)-69)/12)
	n := int(float64(sampleRate) * 0.120)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(n)
		env := math.Exp(-6 * t)
		out[i] = float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * env * 0.6)
	}
	return out
}

// renderKick is a decaying sine with a downward pitch bend.
func renderKick(sampleRate int) []float32 {
	n := int(float64(sampleRate) * 0.180)
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		freq := 160 - 105*t
		phase += 2 * math.Pi * freq / float64(sampleRate)
		env := math.Exp(-5 * t)
		out[i] = float32(math.Sin(phase) * env)
	}
	return out
}

// renderSnare mixes a noise burst with a short 190 Hz body.
func renderSnare(sampleRate int) []float32 {
	n := int(float64(sampleRate) * 0.150)
	out := make([]float32, n)
	noise := newNoise(0x5eed)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		phase += 2 * math.Pi * 190 / float64(sampleRate)
		body := math.Sin(phase) * math.Exp(-18*t) * 0.5
		hiss := noise.next() * math.Exp(-9*t) * 0.7
		out[i] = float32(body + hiss)
	}
	return out
}

// renderHat is a bright noise burst; decay controls closed vs open length.
func renderHat(sampleRate int, seconds, decay float64) []float32 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float32, n)
	noise := newNoise(0x1a2b)
	prev := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		s := noise.next()
		// First difference brightens the noise toward a metallic sizzle.
		bright := (s - prev) * 0.8
		prev = s
		out[i] = float32(bright * math.Exp(-decay*t) * 0.6)
	}
	return out
}

// noise is a tiny deterministic LCG so fallback voices render identically
// everywhere.
type noise struct{ state uint32 }

func newNoise(seed uint32) *noise {
	if seed == 0 {
		seed = 1
	}
	return &noise{state: seed}
}

func (r *noise) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state)/float64(math.MaxUint32)*2 - 1
}
