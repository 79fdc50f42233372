// Package audio realizes scheduled notes as sound. A Mixer holds one-shot
// drum voices scheduled at absolute sample positions on its own clock; that
// clock is also what the lookahead scheduler reads, so note times and audio
// rendering can never drift apart.
package audio

import (
	"sync"

	"github.com/groovekit/swung/internal/effects"
)

// Mixer sums scheduled one-shot voices into a stereo stream. It implements
// the sample source consumed by the realtime backend and by offline
// rendering.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	frames     int64 // frames rendered so far; the output clock
	master     float32
	active     []*oneShot
}

// oneShot is a single playing drum hit. It removes itself from the mixer
// when its data runs out.
type oneShot struct {
	start int64 // absolute frame the hit begins at
	pos   int
	data  []float32
	fx    *effects.Chain
}

func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate, master: 1}
}

// Now returns the output clock in seconds: how much audio has been rendered.
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.frames) / float64(m.sampleRate)
}

// SetMasterGain sets the output gain scalar.
func (m *Mixer) SetMasterGain(g float64) {
	m.mu.Lock()
	m.master = float32(g)
	m.mu.Unlock()
}

// ActiveVoices reports how many one-shots are still sounding.
func (m *Mixer) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// ScheduleAt queues pcm to start playing at the absolute clock time at,
// shaped by gain and a velocity-derived lowpass cutoff. A hit scheduled in
// the past starts part-way through; one that has fully elapsed is dropped.
func (m *Mixer) ScheduleAt(at float64, pcm []float32, gain, cutoffHz float64) {
	if len(pcm) == 0 || gain <= 0 {
		return
	}
	v := &oneShot{
		start: int64(at * float64(m.sampleRate)),
		data:  pcm,
		fx: effects.NewChain(
			effects.NewLowPass(m.sampleRate, cutoffHz),
			effects.Gain(gain),
		),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.start < m.frames {
		skip := int(m.frames - v.start)
		if skip >= len(pcm) {
			return
		}
		v.pos = skip
		v.start = m.frames
	}
	m.active = append(m.active, v)
}

// Process renders the next len(dst)/2 frames of interleaved stereo and
// advances the clock. It is the only writer of the clock.
func (m *Mixer) Process(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	frames := len(dst) / 2

	m.mu.Lock()
	defer m.mu.Unlock()

	for f := 0; f < frames; f++ {
		abs := m.frames + int64(f)
		var sum float32
		for _, v := range m.active {
			if abs < v.start || v.pos >= len(v.data) {
				continue
			}
			sum += v.fx.Process(v.data[v.pos])
			v.pos++
		}
		sum *= m.master
		dst[f*2] = sum
		dst[f*2+1] = sum
	}
	m.frames += int64(frames)

	// Drop finished voices.
	kept := m.active[:0]
	for _, v := range m.active {
		if v.pos < len(v.data) {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = kept
}
