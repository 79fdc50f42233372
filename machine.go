// Package swung is the timing and note-generation core of a step-sequencer
// drum machine. A Machine keeps a 16-step, four-voice pattern locked to the
// output clock through lookahead scheduling while layering humanized swing,
// probabilistic ghost notes and an asynchronous groove model over it. The
// enhancement layers degrade, never block: with the groove model silent the
// formula engine alone drives playback.
package swung

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/groovekit/swung/internal/audio"
	"github.com/groovekit/swung/internal/ghost"
	"github.com/groovekit/swung/internal/groove"
	"github.com/groovekit/swung/internal/model"
	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/internal/sched"
	"github.com/groovekit/swung/note"
)

// EventKind identifies playback events delivered through Watch.
type EventKind int

const (
	// EventStep fires once per scheduled step, for playhead sync.
	EventStep EventKind = iota
	// EventMainHit fires for each explicit pattern hit.
	EventMainHit
	// EventGhostHit fires for each inserted ghost note.
	EventGhostHit
)

// Event reports one playback occurrence. When is absolute output-clock
// seconds.
type Event struct {
	Kind  EventKind
	Step  int
	When  float64
	Voice note.Voice
}

// ErrInvalidBPM is returned when a tempo update is rejected at the boundary.
var ErrInvalidBPM = errors.New("bpm must be a positive finite number")

// Machine wires the scheduler, the humanize engine, the ghost generator, the
// background groove model and an output dispatcher together.
type Machine struct {
	log    *zap.Logger
	disp   Dispatcher
	out    *audio.Output // owned built-in output; nil with a custom dispatcher
	sch    *sched.Scheduler
	worker *model.Worker
	done   chan struct{}

	mu        sync.Mutex
	pattern   note.Pattern
	tracks    note.TrackConfig
	mode      note.HatMode
	intensity int // 0-100
	bpm       float64
	grooveSeq note.GrooveSequence
	ghosts    []note.GhostNote
	rng       *rnd.Source
	reqSeq    uint64

	eventMu sync.Mutex
	events  chan Event
}

// New builds a Machine and spawns its background groove model. The machine
// is idle until Start.
func New(opts ...Option) (*Machine, error) {
	cfg := defaultMachineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if cfg.log == nil {
		cfg.log = zap.NewNop()
	}
	seed := cfg.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := &Machine{
		log:       cfg.log,
		tracks:    cfg.tracks,
		mode:      cfg.mode,
		intensity: cfg.intensity,
		bpm:       cfg.bpm,
		rng:       rnd.New(seed),
		done:      make(chan struct{}),
	}
	if cfg.pattern != nil {
		m.pattern = *cfg.pattern
	} else {
		m.pattern = note.BackbeatPattern()
	}

	if cfg.dispatcher != nil {
		m.disp = cfg.dispatcher
	} else {
		m.out = audio.NewOutput(cfg.sampleRate, cfg.log)
		m.disp = m.out
	}

	m.sch = sched.New(m.disp.Now, m.BPM, m.onTick)
	m.worker = model.NewWorker(seed+1, cfg.log)
	m.worker.Start()
	go m.modelLoop()
	return m, nil
}

// Output returns the built-in audio output, or nil when a custom dispatcher
// is installed.
func (m *Machine) Output() *audio.Output { return m.out }

// Start opens the output (for the built-in audio dispatcher) and begins the
// scheduling loop at step zero.
func (m *Machine) Start() error {
	if m.out != nil {
		if err := m.out.Open(); err != nil {
			return err
		}
	}
	m.sch.Start()
	return nil
}

// Stop halts the scheduling loop. Notes already pushed into the lookahead
// window still sound; an outstanding groove request still updates the cache.
func (m *Machine) Stop() {
	m.sch.Stop()
}

// Playing reports whether the scheduling loop is running.
func (m *Machine) Playing() bool {
	return m.sch.Running()
}

// Close stops playback, the groove model and the audio device.
func (m *Machine) Close() error {
	m.sch.Stop()
	close(m.done)
	m.worker.Close()
	if m.out != nil {
		return m.out.Close()
	}
	return nil
}

// Watch returns a buffered channel of playback events. Only the most recent
// channel receives events; receive promptly, slow consumers drop events
// rather than stalling the scheduler.
func (m *Machine) Watch() <-chan Event {
	ch := make(chan Event, 64)
	m.eventMu.Lock()
	m.events = ch
	m.eventMu.Unlock()
	return ch
}

func (m *Machine) sendEvent(ev Event) {
	m.eventMu.Lock()
	ch := m.events
	m.eventMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SetBPM updates the tempo. Invalid values are rejected and the prior tempo
// retained; valid changes take effect at the scheduler's next advance and
// trigger a new groove request.
func (m *Machine) SetBPM(bpm float64) error {
	if !note.ValidBPM(bpm) {
		m.log.Warn("rejected invalid bpm", zap.Float64("bpm", bpm))
		return ErrInvalidBPM
	}
	m.mu.Lock()
	changed := m.bpm != bpm
	m.bpm = bpm
	m.mu.Unlock()
	if changed {
		m.requestGroove()
	}
	return nil
}

// BPM returns the current tempo.
func (m *Machine) BPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bpm
}

// SetPattern replaces the step pattern and triggers a new groove request.
func (m *Machine) SetPattern(p note.Pattern) {
	m.mu.Lock()
	changed := m.pattern != p
	m.pattern = p
	m.mu.Unlock()
	if changed {
		m.requestGroove()
	}
}

// Pattern returns a snapshot of the step pattern.
func (m *Machine) Pattern() note.Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pattern
}

// SetIntensity updates the global humanize intensity (0-100) and triggers a
// new groove request.
func (m *Machine) SetIntensity(pct int) {
	pct = clampPct(pct)
	m.mu.Lock()
	changed := m.intensity != pct
	m.intensity = pct
	m.mu.Unlock()
	if changed {
		m.requestGroove()
	}
}

// Intensity returns the humanize intensity, 0-100.
func (m *Machine) Intensity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intensity
}

// SetHatMode switches the hi-hat feel and regenerates ghost notes from the
// cached groove sequence.
func (m *Machine) SetHatMode(mode note.HatMode) {
	m.mu.Lock()
	m.mode = mode
	m.regenGhostsLocked()
	m.mu.Unlock()
}

// HatMode returns the current hi-hat mode.
func (m *Machine) HatMode() note.HatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetTrackSettings updates one voice's overrides and regenerates ghost notes
// from the cached sequence without a new groove request.
func (m *Machine) SetTrackSettings(v note.Voice, ts note.TrackSettings) {
	m.mu.Lock()
	m.tracks[v] = ts
	m.regenGhostsLocked()
	m.mu.Unlock()
}

// TrackSettings returns one voice's overrides.
func (m *Machine) TrackSettings(v note.Voice) note.TrackSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracks[v]
}

// requestGroove submits the current state to the background model. The
// sequence number lets the response loop discard results a newer request has
// obsoleted.
func (m *Machine) requestGroove() {
	m.mu.Lock()
	m.reqSeq++
	req := model.Request{
		Seq:       m.reqSeq,
		BPM:       m.bpm,
		Pattern:   m.pattern,
		Intensity: float64(m.intensity) / 100,
	}
	m.mu.Unlock()
	m.worker.Submit(req)
}

// modelLoop consumes the groove model's signals for the machine's lifetime.
// It keeps running while playback is stopped so a late response still lands
// in the cache.
func (m *Machine) modelLoop() {
	ready := m.worker.Ready()
	for {
		select {
		case <-m.done:
			return
		case <-ready:
			ready = nil
			m.requestGroove()
		case resp := <-m.worker.Responses():
			m.handleResponse(resp)
		}
	}
}

func (m *Machine) handleResponse(resp model.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp.Seq != m.reqSeq {
		m.log.Debug("discarding stale groove response",
			zap.Uint64("got", resp.Seq), zap.Uint64("want", m.reqSeq))
		return
	}
	m.grooveSeq = resp.Groove
	m.regenGhostsLocked()
}

// regenGhostsLocked rebuilds ghost placement from the cached sequence and
// current settings. Callers hold m.mu.
func (m *Machine) regenGhostsLocked() {
	m.ghosts = ghost.Generate(ghost.Config{
		Pattern:   m.pattern,
		BPM:       m.bpm,
		Intensity: float64(m.intensity) / 100,
		Tracks:    m.tracks,
		Mode:      m.mode,
		Groove:    m.grooveSeq,
	}, m.rng)
}

// onTick runs on the scheduler goroutine once per step inside the lookahead
// window. All state is read as one snapshot; the work is bounded arithmetic
// plus dispatch calls.
func (m *Machine) onTick(step int, when float64) {
	m.mu.Lock()
	intensity := float64(m.intensity) / 100
	bpm := m.bpm
	notes := make([]note.ScheduledNote, 0, note.NumVoices+2)
	voices := make([]note.Voice, 0, note.NumVoices+2)

	for v := note.Voice(0); v < note.NumVoices; v++ {
		if !m.pattern.Active(v, step) {
			continue
		}
		when2, vel := groove.Humanize(groove.Params{
			Voice:     v,
			Step:      step,
			GridTime:  when,
			BPM:       bpm,
			Intensity: intensity,
			Groove:    m.grooveSeq,
			Settings:  m.tracks[v],
			Mode:      m.mode,
		}, m.rng)
		notes = append(notes, note.ScheduledNote{When: when2, Pitch: v.Pitch(), Velocity: vel})
		voices = append(voices, v)
	}

	// Ghost placement is frozen from generation-time state; only its timing
	// scale follows the live intensity.
	for _, g := range m.ghosts {
		if g.Step != step {
			continue
		}
		notes = append(notes, note.ScheduledNote{
			When:     when + g.Offset*intensity,
			Pitch:    g.Voice.Pitch(),
			Velocity: g.Velocity,
			Ghost:    true,
		})
		voices = append(voices, g.Voice)
	}
	m.mu.Unlock()

	m.sendEvent(Event{Kind: EventStep, Step: step, When: when})
	for i, n := range notes {
		m.disp.Dispatch(n)
		kind := EventMainHit
		if n.Ghost {
			kind = EventGhostHit
		}
		m.sendEvent(Event{Kind: kind, Step: step, When: n.When, Voice: voices[i]})
	}
}
