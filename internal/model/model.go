// Package model runs the background groove model: an isolated worker
// goroutine that turns {bpm, pattern, intensity} requests into suggested
// per-note timing and velocity deviations. The worker communicates through
// one-way channels only; responses carry the request sequence number so the
// consumer can discard results that a newer request has obsoleted.
package model

import (
	"math"

	"go.uber.org/zap"

	"github.com/groovekit/swung/internal/rnd"
	"github.com/groovekit/swung/note"
)

// Request asks the model for a groove sequence.
type Request struct {
	Seq       uint64
	BPM       float64
	Pattern   note.Pattern
	Intensity float64 // 0.0-1.0
}

// Response carries the generated sequence, tagged with the request number.
type Response struct {
	Seq    uint64
	Groove note.GrooveSequence
}

// Worker owns the model goroutine. Requests never block the sender: the
// request channel holds one slot and a pending request is replaced rather
// than queued, since only the latest state matters.
type Worker struct {
	req   chan Request
	resp  chan Response
	ready chan struct{}
	done  chan struct{}
	rng   *rnd.Source
	log   *zap.Logger
}

// NewWorker builds a worker with a deterministic seed. Call Start to spawn
// the goroutine.
func NewWorker(seed int64, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		req:   make(chan Request, 1),
		resp:  make(chan Response, 4),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
		rng:   rnd.New(seed),
		log:   log,
	}
}

// Ready is closed once the model is initialized and accepting requests.
func (w *Worker) Ready() <-chan struct{} { return w.ready }

// Responses delivers generated sequences. The channel is buffered; a full
// buffer drops the oldest unread response rather than blocking the worker.
func (w *Worker) Responses() <-chan Response { return w.resp }

// Submit hands the latest request to the worker, replacing any request still
// waiting. It never blocks.
func (w *Worker) Submit(r Request) {
	for {
		select {
		case w.req <- r:
			return
		default:
		}
		select {
		case <-w.req: // drop the stale pending request
		default:
		}
	}
}

// Start spawns the worker goroutine and signals readiness.
func (w *Worker) Start() {
	go w.run()
}

// Close stops the worker. Outstanding responses already buffered remain
// readable.
func (w *Worker) Close() {
	close(w.done)
}

func (w *Worker) run() {
	close(w.ready)
	for {
		select {
		case <-w.done:
			return
		case r := <-w.req:
			resp := Response{Seq: r.Seq, Groove: w.infer(r)}
			select {
			case w.resp <- resp:
			default:
				// Buffer full: evict the oldest response, latest wins.
				select {
				case <-w.resp:
				default:
				}
				select {
				case w.resp <- resp:
				default:
				}
			}
		}
	}
}

// infer generates the groove sequence. Any panic in the generation path is
// contained here: the model returns an empty sequence and playback falls
// back to formula-only humanization.
func (w *Worker) infer(r Request) (seq note.GrooveSequence) {
	defer func() {
		if p := recover(); p != nil {
			w.log.Warn("groove model inference failed", zap.Any("panic", p))
			seq = nil
		}
	}()
	if !note.ValidBPM(r.BPM) || r.Pattern.Empty() {
		return nil
	}
	return generate(r, w.rng)
}

// timingFeel is the model's learned per-voice behavior: a directional lean,
// how strongly the lean grows toward the bar's end, and velocity contour.
// Values are fractions of a step.
type timingFeel struct {
	lean      float64 // constant directional deviation
	buildup   float64 // extra lean accumulated across the bar
	scatter   float64 // random spread
	velBase   float64
	velAccent float64 // added on quarter-note downbeats
}

var feels = [note.NumVoices]timingFeel{
	note.Kick:      {lean: 0.10, buildup: 0.04, scatter: 0.020, velBase: 104, velAccent: 10},
	note.Snare:     {lean: -0.05, buildup: 0.02, scatter: 0.015, velBase: 102, velAccent: 8},
	note.HatClosed: {lean: 0.03, buildup: 0.05, scatter: 0.025, velBase: 88, velAccent: 18},
	note.HatOpen:   {lean: 0.02, buildup: 0.03, scatter: 0.020, velBase: 92, velAccent: 12},
}

// generate walks the active pattern and emits one GrooveNote per hit. The
// deviation leans each voice off the grid, grows through the bar, and
// scatters a little; intensity scales everything.
func generate(r Request, rng *rnd.Source) note.GrooveSequence {
	stepDur := note.StepDuration(r.BPM)
	var seq note.GrooveSequence
	for v := note.Voice(0); v < note.NumVoices; v++ {
		f := feels[v]
		for step := 0; step < note.StepsPerBar; step++ {
			if !r.Pattern.Active(v, step) {
				continue
			}
			progress := float64(step) / note.StepsPerBar
			dev := f.lean + f.buildup*progress
			dev += rng.Gaussian(0, f.scatter)
			dev *= r.Intensity

			vel := f.velBase
			if step%note.StepsPerBeat == 0 {
				vel += f.velAccent
			}
			vel += rng.Gaussian(0, 4*r.Intensity)

			seq = append(seq, note.GrooveNote{
				Pitch:    v.Pitch(),
				Start:    (float64(step) + dev) * stepDur,
				Velocity: note.ClampVelocity(vel),
			})
		}
	}
	// Clamp deviations into the engine's one-step match window.
	for i := range seq {
		expected := math.Round(seq[i].Start/stepDur) * stepDur
		if d := seq[i].Start - expected; d > stepDur*0.45 {
			seq[i].Start = expected + stepDur*0.45
		} else if d < -stepDur*0.45 {
			seq[i].Start = expected - stepDur*0.45
		}
	}
	return seq
}
