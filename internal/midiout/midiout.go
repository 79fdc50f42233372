// Package midiout dispatches scheduled notes to a hardware MIDI port instead
// of the built-in audio output. Timing inside the lookahead window is
// realized with per-note timers; the port and driver come from gomidi.
package midiout

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
	"go.uber.org/zap"

	"github.com/groovekit/swung/note"
)

// noteOffDelay is how long after NoteOn the matching NoteOff goes out; drum
// modules ignore duration, but well-behaved receivers want the pair.
const noteOffDelay = 50 * time.Millisecond

// Sender sends NoteOn/NoteOff pairs on MIDI channel 10 (index 9), the GM
// percussion channel.
type Sender struct {
	log     *zap.Logger
	send    func(gomidi.Message) error
	epoch   time.Time
	channel uint8

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

// NewSender connects to the first out port whose name contains portName.
// A missing port fails here, at construction, never mid-playback.
func NewSender(portName string, log *zap.Logger) (*Sender, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("find midi out port %q: %w", portName, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open midi out port %q: %w", portName, err)
	}
	log.Info("midi out connected", zap.String("port", out.String()))
	return &Sender{
		log:     log,
		send:    send,
		epoch:   time.Now(),
		channel: 9,
	}, nil
}

// Now returns seconds elapsed on the sender's clock. It stands in for the
// audio output clock when no audio device is open.
func (s *Sender) Now() float64 {
	return time.Since(s.epoch).Seconds()
}

// Dispatch arms a timer for the note's absolute time and returns
// immediately. A note already due goes out at once.
func (s *Sender) Dispatch(n note.ScheduledNote) {
	delay := time.Duration((n.When - s.Now()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	t := time.AfterFunc(delay, func() { s.fire(n) })
	s.timers = append(s.timers, t)
}

func (s *Sender) fire(n note.ScheduledNote) {
	if err := s.send(gomidi.NoteOn(s.channel, n.Pitch, n.Velocity)); err != nil {
		s.log.Warn("midi note-on failed", zap.Uint8("pitch", n.Pitch), zap.Error(err))
		return
	}
	time.AfterFunc(noteOffDelay, func() {
		if err := s.send(gomidi.NoteOff(s.channel, n.Pitch)); err != nil {
			s.log.Warn("midi note-off failed", zap.Uint8("pitch", n.Pitch), zap.Error(err))
		}
	})
}

// Close cancels pending timers and closes the driver.
func (s *Sender) Close() {
	s.mu.Lock()
	s.closed = true
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	gomidi.CloseDriver()
}
