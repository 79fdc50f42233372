package audio

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/groovekit/swung/note"
)

const (
	cutoffMin = 600.0  // Hz at velocity 1: muffled
	cutoffMax = 9000.0 // Hz at velocity 127: bright
)

// Output turns final (time, pitch, velocity) triples into sound. Each voice
// plays its preloaded sample when one exists; otherwise a synthesized
// fallback hit. Velocity maps exponentially to gain and quadratically to a
// lowpass cutoff.
type Output struct {
	log        *zap.Logger
	sampleRate int
	mixer      *Mixer

	mu       sync.Mutex
	samples  [note.NumVoices][]float32
	fallback [note.NumVoices][]float32
	trim     [note.NumVoices]float64
	dev      *backend
}

// NewOutput builds an output stage without opening an audio device; Open
// attaches the realtime backend. Offline rendering and tests drive the
// mixer directly.
func NewOutput(sampleRate int, log *zap.Logger) *Output {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Output{
		log:        log,
		sampleRate: sampleRate,
		mixer:      NewMixer(sampleRate),
	}
	for v := range o.trim {
		o.trim[v] = 1
	}
	return o
}

// Mixer exposes the underlying mixer for offline rendering.
func (o *Output) Mixer() *Mixer { return o.mixer }

// Now returns the output clock in seconds.
func (o *Output) Now() float64 { return o.mixer.Now() }

// SetMasterVolume sets the output gain scalar. 1.0 is default.
func (o *Output) SetMasterVolume(v float64) {
	if v < 0 {
		v = 0
	}
	o.mixer.SetMasterGain(v)
}

// SetVoiceGain sets a per-voice gain trim applied on top of the velocity
// curve. 1.0 is default.
func (o *Output) SetVoiceGain(v note.Voice, gain float64) {
	if gain < 0 {
		gain = 0
	}
	o.mu.Lock()
	o.trim[v] = gain
	o.mu.Unlock()
}

// SetSample installs a preloaded mono sample for a voice; nil reverts the
// voice to its synthesized fallback.
func (o *Output) SetSample(v note.Voice, pcm []float32) {
	o.mu.Lock()
	o.samples[v] = pcm
	o.mu.Unlock()
}

// Open starts realtime playback through the shared audio context.
func (o *Output) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dev != nil {
		o.dev.play()
		return nil
	}
	dev, err := newBackend(o.sampleRate, o.mixer)
	if err != nil {
		return err
	}
	o.dev = dev
	o.dev.play()
	return nil
}

// Pause suspends the realtime backend without discarding scheduled hits.
func (o *Output) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dev != nil {
		o.dev.pause()
	}
}

// Close stops the realtime backend.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dev == nil {
		return nil
	}
	err := o.dev.stop()
	o.dev = nil
	return err
}

// Dispatch schedules one note. It never blocks and never fails: an unknown
// pitch degrades to a plain tone with a logged warning.
func (o *Output) Dispatch(n note.ScheduledNote) {
	pcm := o.pcmForPitch(n.Pitch)
	gain := velocityGain(n.Velocity)
	if v, ok := note.VoiceForPitch(n.Pitch); ok {
		o.mu.Lock()
		gain *= o.trim[v]
		o.mu.Unlock()
	}
	cutoff := velocityCutoff(n.Velocity)
	o.mixer.ScheduleAt(n.When, pcm, gain, cutoff)
}

func (o *Output) pcmForPitch(pitch uint8) []float32 {
	v, ok := note.VoiceForPitch(pitch)
	if !ok {
		o.log.Warn("no voice for pitch, using fallback tone", zap.Uint8("pitch", pitch))
		return RenderTone(pitch, o.sampleRate)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if pcm := o.samples[v]; pcm != nil {
		return pcm
	}
	if o.fallback[v] == nil {
		o.fallback[v] = RenderVoice(v, o.sampleRate)
	}
	return o.fallback[v]
}

// velocityGain maps velocity 1-127 to gain via an exponential curve.
func velocityGain(vel uint8) float64 {
	return math.Pow(float64(vel)/127, 1.5)
}

// velocityCutoff maps velocity to the lowpass cutoff via a squared curve,
// emulating how softly struck drums sound darker.
func velocityCutoff(vel uint8) float64 {
	f := float64(vel) / 127
	return cutoffMin + (cutoffMax-cutoffMin)*f*f
}
