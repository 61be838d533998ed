package tween

import (
	"testing"
	"time"

	"github.com/resonant-audio/resound/info"
)

func TestParameterTweenConverges(t *testing.T) {
	p := NewParameter(Fixed(0.0), 0.0, LerpFloat[float64])

	tw := Tween{StartTime: Immediate, Duration: 100 * time.Millisecond, Easing: LinearEasing}
	p.Set(Fixed(10.0), tw)

	// sample_rate=1000, chunk of 50 samples = 50ms per chunk.
	dt := 1.0 / 1000.0
	out := make([]float64, 50)

	p.UpdateChunk(out, dt, info.EmptyInfo)
	if p.Value() >= 10.0 {
		t.Fatalf("expected partial progress after 50ms of 100ms tween, got %v", p.Value())
	}

	p.UpdateChunk(out, dt, info.EmptyInfo)
	if p.Value() != 10.0 {
		t.Fatalf("expected convergence to target after full duration, got %v", p.Value())
	}
}

func TestParameterDelayedStartGatesProgress(t *testing.T) {
	p := NewParameter(Fixed(0.0), 0.0, LerpFloat[float64])
	tw := Tween{StartTime: Delayed(200 * time.Millisecond), Duration: 100 * time.Millisecond, Easing: LinearEasing}
	p.Set(Fixed(10.0), tw)

	dt := 1.0 / 1000.0
	out := make([]float64, 50) // 50ms chunk

	p.UpdateChunk(out, dt, info.EmptyInfo)
	if p.Value() != 0.0 {
		t.Fatalf("expected no progress before delay elapses, got %v", p.Value())
	}

	// Two more 50ms chunks still fall entirely within the 200ms delay
	// (50 + 50 + 50 = 150ms consumed so far).
	for i := 0; i < 2; i++ {
		p.UpdateChunk(out, dt, info.EmptyInfo)
		if p.Value() != 0.0 {
			t.Fatalf("expected no progress during delay (chunk %d), got %v", i+2, p.Value())
		}
	}

	// This chunk exhausts the remaining 50ms of delay, opens the gate,
	// and immediately starts measuring tween progress within the same
	// chunk (elapsed 0 -> 50ms of the 100ms tween).
	p.UpdateChunk(out, dt, info.EmptyInfo)
	if p.Value() >= 10.0 || p.Value() <= 0.0 {
		t.Fatalf("expected partial tween progress once the delay has elapsed, got %v", p.Value())
	}

	p.UpdateChunk(out, dt, info.EmptyInfo)
	if p.Value() != 10.0 {
		t.Fatalf("expected convergence to target once the 100ms tween duration elapses, got %v", p.Value())
	}
}
