package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"

	"github.com/groovekit/swung/note"
)

// sample file names looked up per voice, in preference order.
var sampleNames = [note.NumVoices][]string{
	note.Kick:      {"kick.wav", "bd.wav"},
	note.Snare:     {"snare.wav", "sd.wav"},
	note.HatClosed: {"hat-closed.wav", "chh.wav", "hat.wav"},
	note.HatOpen:   {"hat-open.wav", "ohh.wav"},
}

// LoadSampleDir scans dir for per-voice WAV files and installs whatever
// decodes. A missing or undecodable file is non-fatal: the voice keeps its
// synthesized fallback and a warning is logged.
func (o *Output) LoadSampleDir(dir string) {
	for v := note.Voice(0); v < note.NumVoices; v++ {
		for _, name := range sampleNames[v] {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if !os.IsNotExist(err) {
					o.log.Warn("sample unreadable", zap.String("path", path), zap.Error(err))
				}
				continue
			}
			pcm, err := decodeWAV(data, o.sampleRate)
			if err != nil {
				o.log.Warn("sample undecodable, keeping synthesized voice",
					zap.String("path", path), zap.Error(err))
				continue
			}
			o.SetSample(v, pcm)
			o.log.Info("sample loaded", zap.Stringer("voice", v), zap.String("path", path))
			break
		}
	}
}

// decodeWAV decodes a WAV file to mono float32 at the output sample rate.
func decodeWAV(data []byte, sampleRate int) ([]float32, error) {
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read wav stream: %w", err)
	}
	// The decoded stream is 16-bit little-endian stereo; average to mono.
	frames := len(raw) / 4
	if frames == 0 {
		return nil, fmt.Errorf("empty wav")
	}
	pcm := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		pcm[i] = (float32(l) + float32(r)) / 2 / 32768
	}
	return pcm, nil
}
