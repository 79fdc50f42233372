package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// streamReader adapts the mixer to the io.Reader the audio backend pulls
// 32-bit float stereo frames through.
type streamReader struct {
	mu    sync.Mutex
	mixer *Mixer
	buf   []float32
}

func newStreamReader(m *Mixer) *streamReader {
	return &streamReader{mixer: m}
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.mixer.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *streamReader) Close() error { return nil }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide audio context; the backend
// allows only one, at one sample rate.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// backend is the realtime device player pulling from the mixer.
type backend struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

func newBackend(sampleRate int, m *Mixer) (*backend, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newStreamReader(m)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &backend{player: pl, reader: reader}, nil
}

func (b *backend) play()  { b.player.Play() }
func (b *backend) pause() { b.player.Pause() }

func (b *backend) stop() error {
	b.player.Pause()
	b.player.Close()
	return b.reader.Close()
}
