package effects

import (
	"math"
	"testing"
)

func TestLowPassAttenuatesHighFrequency(t *testing.T) {
	const sr = 48000
	lp := NewLowPass(sr, 500)

	energy := func(freq float64) float64 {
		lp.Reset()
		var sum float64
		for i := 0; i < sr/10; i++ {
			s := float32(math.Sin(2 * math.Pi * freq * float64(i) / sr))
			out := lp.Process(s)
			sum += float64(out * out)
		}
		return sum
	}

	low := energy(100)
	high := energy(8000)
	if high >= low/4 {
		t.Fatalf("expected strong attenuation at 8kHz: low=%v high=%v", low, high)
	}
}

func TestLowPassPassesDC(t *testing.T) {
	lp := NewLowPass(48000, 2000)
	var out float32
	for i := 0; i < 48000; i++ {
		out = lp.Process(1)
	}
	if out < 0.99 {
		t.Fatalf("DC should pass nearly unattenuated, got %v", out)
	}
}

func TestChainOrder(t *testing.T) {
	c := NewChain(Gain(0.5))
	c.Add(Gain(0.5))
	if got := c.Process(1); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}
