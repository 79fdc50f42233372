package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovekit/swung/note"
)

func TestDefaultConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()

	pat, err := cfg.Pattern()
	require.NoError(t, err)
	assert.Equal(t, note.BackbeatPattern(), pat)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, note.HatFriction, mode)

	tc, err := cfg.TrackSettings()
	require.NoError(t, err)
	for v := note.Voice(0); v < note.NumVoices; v++ {
		assert.False(t, tc[v].SwingLocked)
		assert.Zero(t, tc[v].GhostQuantity)
	}
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	src := Config{
		BPM:       120,
		Intensity: 85,
		HatMode:   "limp",
		Tracks: map[string]TrackConfig{
			"snare": {Grid: "----x-------x---", GhostQuantity: 40},
			"kick":  {Grid: "x---x---x---x---", SwingLocked: true},
		},
		MIDI: MIDIConfig{PortName: "UM-ONE", Enabled: true},
	}
	data, err := json.Marshal(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.BPM)
	assert.Equal(t, "UM-ONE", cfg.MIDI.PortName)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, note.HatLimp, mode)

	pat, err := cfg.Pattern()
	require.NoError(t, err)
	assert.True(t, pat.Active(note.Kick, 4))
	assert.True(t, pat.Active(note.Snare, 12))
	assert.False(t, pat.Active(note.HatClosed, 0))

	tc, err := cfg.TrackSettings()
	require.NoError(t, err)
	assert.True(t, tc[note.Kick].SwingLocked)
	assert.Equal(t, 40, tc[note.Snare].GhostQuantity)
}

func TestPatternRejectsBadTracks(t *testing.T) {
	cfg := &Config{Tracks: map[string]TrackConfig{"cowbell": {Grid: "x---------------"}}}
	_, err := cfg.Pattern()
	assert.Error(t, err)

	cfg = &Config{Tracks: map[string]TrackConfig{"kick": {Grid: "x--"}}}
	_, err = cfg.Pattern()
	assert.Error(t, err)
}

func TestModeRejectsUnknown(t *testing.T) {
	cfg := &Config{HatMode: "wobble"}
	_, err := cfg.Mode()
	assert.Error(t, err)
}
