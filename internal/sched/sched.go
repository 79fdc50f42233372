// Package sched implements lookahead scheduling: a coarse wake loop that
// pushes precisely timed step callbacks a short window ahead of the output
// clock, so playback stays glitch-free despite the wake interval being far
// larger than a hardware tick.
package sched

import (
	"sync"
	"time"

	"github.com/groovekit/swung/note"
)

const (
	// DefaultWake is the wake-loop cadence.
	DefaultWake = 25 * time.Millisecond
	// DefaultLookahead is how far ahead of the clock ticks are scheduled.
	DefaultLookahead = 0.100
	// startEpsilon delays the first step slightly past "now" so it is never
	// already in the past when dispatched.
	startEpsilon = 0.005
)

// Scheduler converts tempo into precisely timed step triggers. It knows
// nothing about humanization: it reads a tempo accessor and invokes a tick
// callback with (step, absolute output time) pairs.
//
// The tick callback runs on the wake goroutine inside the lookahead window;
// its work must be bounded and non-blocking.
type Scheduler struct {
	clock func() float64 // output-clock seconds
	tempo func() float64 // current bpm
	tick  func(step int, when float64)

	wake      time.Duration
	lookahead float64

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	step     int
	nextTime float64
}

// New builds a scheduler over an output clock, a tempo accessor and a tick
// callback.
func New(clock, tempo func() float64, tick func(step int, when float64)) *Scheduler {
	return &Scheduler{
		clock:     clock,
		tempo:     tempo,
		tick:      tick,
		wake:      DefaultWake,
		lookahead: DefaultLookahead,
	}
}

// Start resets to step zero and begins the wake loop. Starting a running
// scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.step = 0
	s.nextTime = s.clock() + startEpsilon
	s.stopCh = make(chan struct{})
	go s.run(s.stopCh)
}

// Stop halts the wake loop. Audio events already pushed into the lookahead
// window are not retracted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// Running reports whether the wake loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(stop chan struct{}) {
	t := time.NewTicker(s.wake)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.Pump()
		}
	}
}

// Pump performs one wake cycle: every step whose time falls inside the
// lookahead window is ticked and advanced past. Tempo changes take effect at
// the advance following the change; times already handed out stay put.
func (s *Scheduler) Pump() {
	now := s.clock()
	for {
		s.mu.Lock()
		if !s.running || s.nextTime >= now+s.lookahead {
			s.mu.Unlock()
			return
		}
		step, when := s.step, s.nextTime
		bpm := s.tempo()
		s.nextTime += note.StepDuration(bpm)
		s.step = (s.step + 1) % note.StepsPerBar
		s.mu.Unlock()

		s.tick(step, when)
	}
}
