package modulator

import (
	"math"
	"testing"

	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

func TestWaveformValuesAtKeyPhases(t *testing.T) {
	if v := Sine.value(0.25); math.Abs(v-1) > 1e-9 {
		t.Errorf("Sine.value(0.25) = %v, want 1", v)
	}
	if v := Triangle.value(0); math.Abs(v-0) > 1e-9 {
		t.Errorf("Triangle.value(0) = %v, want 0", v)
	}
	if v := Triangle.value(0.5); math.Abs(v-0) > 1e-9 {
		t.Errorf("Triangle.value(0.5) = %v, want 0", v)
	}
	if v := Sawtooth.value(0.5); math.Abs(v-(-1)) > 1e-9 {
		t.Errorf("Sawtooth.value(0.5) = %v, want -1", v)
	}
	p := Pulse(0.5)
	if v := p.value(0.1); v != 1 {
		t.Errorf("Pulse(0.5).value(0.1) = %v, want 1", v)
	}
	if v := p.value(0.9); v != -1 {
		t.Errorf("Pulse(0.5).value(0.9) = %v, want -1", v)
	}
}

func TestLfoOscillatesAtConfiguredFrequency(t *testing.T) {
	l, _ := NewLfo(LfoSettings{
		Waveform:           Sine,
		Frequency:          tween.Fixed(1.0), // 1 Hz
		Amplitude:          tween.Fixed(1.0),
		Offset:             tween.Fixed(0.0),
		InternalBufferSize: 1000,
	})

	const sampleRate = 1000
	dt := 1.0 / sampleRate
	out := make([]float64, sampleRate) // one full second, one full cycle

	l.OnStartProcessing()
	l.UpdateChunk(dt, info.EmptyInfo, out)

	// After exactly one period at 1 Hz, phase has wrapped back to ~0,
	// so the oscillator's value should be back near its starting point.
	if math.Abs(out[len(out)-1]-out[0]) > 0.05 {
		t.Errorf("expected the waveform to complete a full cycle in one second at 1 Hz, start=%v end=%v", out[0], out[len(out)-1])
	}
}

func TestTweenerIsAModulator(t *testing.T) {
	tw, h := NewTweener(0.0)
	h.SetValue(tween.Fixed(10.0), tween.Tween{StartTime: tween.Immediate, Duration: 0, Easing: tween.LinearEasing})

	tw.OnStartProcessing()
	out := make([]float64, 4)
	tw.UpdateChunk(1.0/1000, info.EmptyInfo, out)

	if out[len(out)-1] != 10.0 {
		t.Errorf("expected tweener to reach target with a zero-duration tween, got %v", out[len(out)-1])
	}
	if tw.Finished() {
		t.Errorf("fresh tweener should not report Finished before Release")
	}
	h.Release()
	if !tw.Finished() {
		t.Errorf("expected Finished after Release")
	}
}
