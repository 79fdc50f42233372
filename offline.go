package swung

import (
	"encoding/binary"
	"math"

	"github.com/groovekit/swung/internal/audio"
	"github.com/groovekit/swung/internal/ghost"
	"github.com/groovekit/swung/internal/groove"
	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/note"
)

// RenderConfig describes an offline render of a pattern. Rendering is fully
// deterministic for a fixed seed and uses formula-only humanization, so no
// audio device or background model is involved.
type RenderConfig struct {
	Pattern    note.Pattern
	BPM        float64
	Intensity  int // 0-100
	Tracks     note.TrackConfig
	Mode       note.HatMode
	Seed       int64
	SampleRate int
	Bars       int
}

// RenderPattern renders the configured bars to interleaved stereo float32,
// with half a second of tail for the last hits to ring out.
func RenderPattern(cfg RenderConfig) []float32 {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Bars <= 0 {
		cfg.Bars = 1
	}
	if !note.ValidBPM(cfg.BPM) {
		cfg.BPM = 90
	}
	intensity := float64(clampPct(cfg.Intensity)) / 100
	rng := rnd.New(cfg.Seed)
	out := audio.NewOutput(cfg.SampleRate, nil)
	stepDur := note.StepDuration(cfg.BPM)

	ghosts := ghost.Generate(ghost.Config{
		Pattern:   cfg.Pattern,
		BPM:       cfg.BPM,
		Intensity: intensity,
		Tracks:    cfg.Tracks,
		Mode:      cfg.Mode,
	}, rng)

	for bar := 0; bar < cfg.Bars; bar++ {
		barStart := float64(bar*note.StepsPerBar) * stepDur
		for step := 0; step < note.StepsPerBar; step++ {
			gridTime := barStart + float64(step)*stepDur
			for v := note.Voice(0); v < note.NumVoices; v++ {
				if !cfg.Pattern.Active(v, step) {
					continue
				}
				when, vel := groove.Humanize(groove.Params{
					Voice:     v,
					Step:      step,
					GridTime:  gridTime,
					BPM:       cfg.BPM,
					Intensity: intensity,
					Settings:  cfg.Tracks[v],
					Mode:      cfg.Mode,
				}, rng)
				out.Dispatch(note.ScheduledNote{When: when, Pitch: v.Pitch(), Velocity: vel})
			}
			for _, g := range ghosts {
				if g.Step != step {
					continue
				}
				out.Dispatch(note.ScheduledNote{
					When:     gridTime + g.Offset*intensity,
					Pitch:    g.Voice.Pitch(),
					Velocity: g.Velocity,
					Ghost:    true,
				})
			}
		}
	}

	seconds := float64(cfg.Bars*note.StepsPerBar)*stepDur + 0.5
	frames := int(float64(cfg.SampleRate) * seconds)
	buf := make([]float32, frames*2)
	out.Mixer().Process(buf)
	return buf
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a WAV container.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
