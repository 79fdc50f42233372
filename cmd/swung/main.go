package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/groovekit/swung"
	"github.com/groovekit/swung/config"
	"github.com/groovekit/swung/internal/midiout"
	"github.com/groovekit/swung/note"
)

func main() {
	var (
		bpm        = flag.Float64("bpm", 0, "tempo in beats per minute (0 = from config)")
		intensity  = flag.Int("intensity", -1, "humanize intensity 0-100 (-1 = from config)")
		mode       = flag.String("mode", "", "hi-hat mode: friction|limp|live")
		seed       = flag.Int64("seed", 0, "random seed (0 = time-based)")
		bars       = flag.Int("bars", 4, "with -wav, number of bars to render")
		wavPath    = flag.String("wav", "", "render to a WAV file instead of playing")
		midiPort   = flag.String("midi", "", "send to a MIDI output port instead of the built-in drums")
		sampleDir  = flag.String("samples", "", "directory of drum samples (kick.wav, snare.wav, ...)")
		configPath = flag.String("config", "", "path to config.json (default: ~/.config/swung)")
		verbose    = flag.Bool("v", false, "verbose step/hit logging")
	)
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// A .env next to the binary can override the environment, handy for
	// pinning a MIDI port per machine.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}
	applyFlags(cfg, *bpm, *intensity, *mode, *seed)
	applyEnv(cfg)

	pattern, err := cfg.Pattern()
	if err != nil {
		log.Fatal("parsing pattern", zap.Error(err))
	}
	hatMode, err := cfg.Mode()
	if err != nil {
		log.Fatal("parsing hat mode", zap.Error(err))
	}
	tracks, err := cfg.TrackSettings()
	if err != nil {
		log.Fatal("parsing track settings", zap.Error(err))
	}

	if *wavPath != "" {
		renderWAV(log, cfg, pattern, hatMode, tracks, *wavPath, *bars)
		return
	}

	opts := []swung.Option{
		swung.WithLogger(log),
		swung.WithPattern(pattern),
		swung.WithBPM(cfg.BPM),
		swung.WithIntensity(cfg.Intensity),
		swung.WithHatMode(hatMode),
		swung.WithTrackSettings(tracks),
		swung.WithSeed(cfg.Seed),
	}
	if cfg.Audio.SampleRate > 0 {
		opts = append(opts, swung.WithSampleRate(cfg.Audio.SampleRate))
	}

	port := *midiPort
	if port == "" && cfg.MIDI.Enabled {
		port = cfg.MIDI.PortName
	}
	var midi *midiout.Sender
	if port != "" {
		midi, err = midiout.NewSender(port, log)
		if err != nil {
			log.Fatal("opening MIDI port", zap.Error(err))
		}
		defer midi.Close()
		opts = append(opts, swung.WithDispatcher(midi))
	}

	m, err := swung.New(opts...)
	if err != nil {
		log.Fatal("creating machine", zap.Error(err))
	}
	defer m.Close()

	if out := m.Output(); out != nil {
		out.SetMasterVolume(cfg.Audio.MasterVolume)
		dir := *sampleDir
		if dir == "" {
			dir = cfg.Audio.SampleDir
		}
		if dir != "" {
			out.LoadSampleDir(dir)
		}
	}

	events := m.Watch()
	if err := m.Start(); err != nil {
		log.Fatal("starting playback", zap.Error(err))
	}
	log.Info("playing", zap.Float64("bpm", m.BPM()), zap.Int("intensity", m.Intensity()),
		zap.String("mode", hatMode.String()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case <-sig:
			fmt.Println()
			m.Stop()
			return
		case ev := <-events:
			if !*verbose {
				continue
			}
			switch ev.Kind {
			case swung.EventStep:
				if ev.Step%note.StepsPerBeat == 0 {
					fmt.Printf("beat %d\n", ev.Step/note.StepsPerBeat+1)
				}
			case swung.EventMainHit:
				fmt.Printf("  %-10s step %2d  t=%.3f\n", ev.Voice, ev.Step, ev.When)
			case swung.EventGhostHit:
				fmt.Printf("  %-10s step %2d  t=%.3f (ghost)\n", ev.Voice, ev.Step, ev.When)
			}
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func applyFlags(cfg *config.Config, bpm float64, intensity int, mode string, seed int64) {
	if bpm > 0 {
		cfg.BPM = bpm
	}
	if intensity >= 0 {
		cfg.Intensity = intensity
	}
	if mode != "" {
		cfg.HatMode = strings.ToLower(strings.TrimSpace(mode))
	}
	if seed != 0 {
		cfg.Seed = seed
	}
}

func applyEnv(cfg *config.Config) {
	if port := os.Getenv("SWUNG_MIDI_PORT"); port != "" {
		cfg.MIDI.PortName = port
		cfg.MIDI.Enabled = true
	}
	if dir := os.Getenv("SWUNG_SAMPLE_DIR"); dir != "" {
		cfg.Audio.SampleDir = dir
	}
}

func renderWAV(log *zap.Logger, cfg *config.Config, pattern note.Pattern,
	mode note.HatMode, tracks note.TrackConfig, path string, bars int) {
	rate := cfg.Audio.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	buf := swung.RenderPattern(swung.RenderConfig{
		Pattern:    pattern,
		BPM:        cfg.BPM,
		Intensity:  cfg.Intensity,
		Tracks:     tracks,
		Mode:       mode,
		Seed:       cfg.Seed,
		SampleRate: rate,
		Bars:       bars,
	})
	data := swung.EncodeWAVFloat32LE(buf, rate, 2)
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatal("writing WAV", zap.Error(err))
	}
	log.Info("rendered", zap.String("path", path), zap.Int("bars", bars),
		zap.Float64("seconds", float64(len(buf)/2)/float64(rate)))
}
