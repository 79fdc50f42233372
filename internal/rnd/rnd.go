// Package rnd provides the random helpers behind humanization: Gaussian
// deviates, the Gaussian probability gate used for ghost-note insertion, and
// velocity generation. Sources are seedable so pattern generation stays
// deterministic under test.
package rnd

import (
	"math"
	"math/rand"
	"time"
)

// Source wraps a seeded PRNG. It is not safe for concurrent use; each
// consumer owns its own Source.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// NewRandom returns a time-seeded Source.
func NewRandom() *Source {
	return New(time.Now().UnixNano())
}

// Float64 returns a uniform deviate in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Gaussian returns a normal deviate with the given mean and standard
// deviation.
func (s *Source) Gaussian(mean, stddev float64) float64 {
	return mean + s.r.NormFloat64()*stddev
}

// GaussianClamped returns a normal deviate clamped to mean ± limit.
func (s *Source) GaussianClamped(mean, stddev, limit float64) float64 {
	v := s.Gaussian(mean, stddev)
	if v > mean+limit {
		return mean + limit
	}
	if v < mean-limit {
		return mean - limit
	}
	return v
}

// GaussianProb draws the absolute value of a standard normal sample,
// normalizes it by three standard deviations, and fires when it falls below
// p. Unlike a uniform gate, near-zero probabilities almost never fire and
// high probabilities approach certainty without reaching it.
func (s *Source) GaussianProb(p float64) bool {
	if p <= 0 {
		return false
	}
	v := math.Abs(s.r.NormFloat64()) / 3
	if v > 1 {
		v = 1
	}
	return v < p
}

// Velocity returns a MIDI velocity drawn around base with Gaussian spread,
// clamped to [1, 127].
func (s *Source) Velocity(base, spread float64) uint8 {
	v := math.Round(s.Gaussian(base, spread))
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}
