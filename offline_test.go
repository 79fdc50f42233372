package swung

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovekit/swung/note"
)

func TestRenderPatternProducesAudio(t *testing.T) {
	cfg := RenderConfig{
		Pattern:    note.BackbeatPattern(),
		BPM:        100,
		Intensity:  60,
		Seed:       7,
		SampleRate: 48000,
		Bars:       2,
	}
	buf := RenderPattern(cfg)

	stepDur := note.StepDuration(100)
	wantFrames := int(48000 * (float64(2*note.StepsPerBar)*stepDur + 0.5))
	require.Len(t, buf, wantFrames*2)

	var energy float64
	peak := float32(0)
	for _, s := range buf {
		energy += float64(s) * float64(s)
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}
	assert.Greater(t, energy, 1.0, "rendered bars are not silence")
	assert.LessOrEqual(t, peak, float32(4.0), "mix stays in a sane range")
}

func TestRenderPatternDeterministicForSeed(t *testing.T) {
	cfg := RenderConfig{
		Pattern:    note.BackbeatPattern(),
		BPM:        92,
		Intensity:  100,
		Seed:       99,
		SampleRate: 22050,
		Bars:       1,
	}
	a := RenderPattern(cfg)
	b := RenderPattern(cfg)
	assert.Equal(t, a, b)

	cfg.Seed = 100
	c := RenderPattern(cfg)
	assert.NotEqual(t, a, c, "a different seed moves the hits")
}

func TestRenderPatternDefaults(t *testing.T) {
	// Zero-value config still renders: defaults kick in for rate, bars and
	// tempo, and an empty pattern yields pure silence.
	buf := RenderPattern(RenderConfig{})
	require.NotEmpty(t, buf)
	for _, s := range buf {
		if s != 0 {
			t.Fatal("empty pattern must render silence")
		}
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	raw := EncodeWAVFloat32LE(samples, 48000, 2)

	require.Len(t, raw, 44+len(samples)*4)
	assert.Equal(t, "RIFF", string(raw[0:4]))
	assert.Equal(t, "WAVE", string(raw[8:12]))
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(raw[20:]), "IEEE float format tag")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(raw[22:]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(raw[24:]))
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16(raw[34:]))
	assert.Equal(t, uint32(len(samples)*4), binary.LittleEndian.Uint32(raw[40:]))
}
