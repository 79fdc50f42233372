package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovekit/swung/note"
)

type tickRec struct {
	step int
	when float64
}

// harness drives Pump directly against a hand-cranked clock.
type harness struct {
	mu    sync.Mutex
	now   float64
	bpm   float64
	ticks []tickRec
	s     *Scheduler
}

func newHarness(bpm float64) *harness {
	h := &harness{bpm: bpm}
	h.s = New(
		func() float64 { h.mu.Lock(); defer h.mu.Unlock(); return h.now },
		func() float64 { h.mu.Lock(); defer h.mu.Unlock(); return h.bpm },
		func(step int, when float64) {
			h.mu.Lock()
			h.ticks = append(h.ticks, tickRec{step, when})
			h.mu.Unlock()
		},
	)
	// Arm without the wake goroutine; tests pump by hand.
	h.s.running = true
	h.s.stopCh = make(chan struct{})
	h.s.nextTime = startEpsilon
	return h
}

func (h *harness) advance(dt float64) {
	h.mu.Lock()
	h.now += dt
	h.mu.Unlock()
	h.s.Pump()
}

func TestStepsAdvanceByStepDuration(t *testing.T) {
	h := newHarness(88)
	stepDur := note.StepDuration(88)

	// Crank one bar's worth of wake cycles.
	for h.now < stepDur*17 {
		h.advance(0.025)
	}

	require.GreaterOrEqual(t, len(h.ticks), 16)
	for i := 1; i < len(h.ticks); i++ {
		assert.InDelta(t, stepDur, h.ticks[i].when-h.ticks[i-1].when, 1e-9,
			"tick %d", i)
	}
}

func TestStepsCycleZeroToFifteen(t *testing.T) {
	h := newHarness(200)
	for h.now < 4.0 {
		h.advance(0.025)
	}
	require.Greater(t, len(h.ticks), 40)
	for i, rec := range h.ticks {
		assert.Equal(t, i%note.StepsPerBar, rec.step)
	}
}

func TestTicksStayInsideLookahead(t *testing.T) {
	h := newHarness(120)
	for h.now < 2.0 {
		h.advance(0.025)
		h.mu.Lock()
		now := h.now
		for _, rec := range h.ticks {
			assert.Less(t, rec.when, now+DefaultLookahead+1e-9)
		}
		h.mu.Unlock()
	}
}

func TestTempoChangeTakesEffectAtNextAdvance(t *testing.T) {
	h := newHarness(60)
	slow := note.StepDuration(60)
	fast := note.StepDuration(120)

	h.advance(0.025) // schedules a few steps at 60 bpm

	h.mu.Lock()
	scheduled := len(h.ticks)
	require.GreaterOrEqual(t, scheduled, 1)
	h.bpm = 120
	h.mu.Unlock()

	for h.now < 2.0 {
		h.advance(0.025)
	}

	// Gaps already committed at the slow tempo stay; later gaps use the new
	// tempo without rescheduling anything retroactively.
	for i := 1; i < len(h.ticks); i++ {
		gap := h.ticks[i].when - h.ticks[i-1].when
		if i < scheduled {
			assert.InDelta(t, slow, gap, 1e-9, "pre-change tick %d", i)
		}
	}
	last := len(h.ticks) - 1
	assert.InDelta(t, fast, h.ticks[last].when-h.ticks[last-1].when, 1e-9)
}

func TestStopHaltsWakeLoop(t *testing.T) {
	var mu sync.Mutex
	count := 0
	s := New(
		func() float64 { return float64(time.Now().UnixNano()) / 1e9 },
		func() float64 { return 120 },
		func(int, float64) { mu.Lock(); count++; mu.Unlock() },
	)
	s.Start()
	assert.True(t, s.Running())
	time.Sleep(80 * time.Millisecond)
	s.Stop()
	assert.False(t, s.Running())

	mu.Lock()
	stopped := count
	mu.Unlock()
	assert.Greater(t, stopped, 0)

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	after := count
	mu.Unlock()
	assert.Equal(t, stopped, after, "no ticks after Stop")
}

func TestStartResetsToStepZero(t *testing.T) {
	h := newHarness(120)
	for h.now < 0.5 {
		h.advance(0.025)
	}
	h.s.Stop()

	h.mu.Lock()
	h.ticks = nil
	h.mu.Unlock()
	h.s.Start()
	defer h.s.Stop()
	h.s.Pump()

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.ticks)
	assert.Equal(t, 0, h.ticks[0].step)
	assert.Greater(t, h.ticks[0].when, h.now)
}

func TestPumpIsNoopWhenStopped(t *testing.T) {
	h := newHarness(120)
	h.s.Stop()
	h.advance(1.0)
	assert.Empty(t, h.ticks)
}
