package effects

import "math"

// LowPass is a one-pole RC lowpass. The output stage drives its cutoff from
// note velocity: soft hits come out muffled, hard hits bright, mimicking the
// timbre of acoustic ghost notes.
type LowPass struct {
	alpha float32
	state float32
}

// NewLowPass creates a lowpass with the given cutoff frequency.
func NewLowPass(sampleRate int, cutoffHz float64) *LowPass {
	rc := 1.0 / (2.0 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	return &LowPass{alpha: float32(dt / (rc + dt))}
}

func (f *LowPass) Process(s float32) float32 {
	f.state += f.alpha * (s - f.state)
	return f.state
}

func (f *LowPass) Reset() {
	f.state = 0
}

// Gain scales samples by a fixed factor.
type Gain float32

func (g Gain) Process(s float32) float32 { return s * float32(g) }
func (Gain) Reset()                      {}
