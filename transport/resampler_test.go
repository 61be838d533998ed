package transport

import (
	"testing"

	"github.com/resonant-audio/resound/dsp"
)

func TestResampler4StartsSilentAndEmpty(t *testing.T) {
	r := NewResampler4(0)
	if !r.Empty() {
		t.Fatalf("expected a freshly constructed resampler to report Empty")
	}
	if got := r.Get(0.5); got != dsp.Zero {
		t.Fatalf("Get before any frames pushed = %+v, want silence", got)
	}
}

func TestResampler4TracksCurrentFrameIndex(t *testing.T) {
	r := NewResampler4(0)
	for i := int64(0); i < 4; i++ {
		f := dsp.Frame{Left: float32(i), Right: float32(i)}
		r.PushFrame(&f, i)
	}
	// After 4 pushes (indices 0..3), the center slot (frames[1]) should
	// report index 1: the listener hears between frames[1] and frames[2].
	if got := r.CurrentFrameIndex(); got != 1 {
		t.Fatalf("CurrentFrameIndex() = %d, want 1", got)
	}
}

func TestResampler4InterpolatesBetweenCenterFrames(t *testing.T) {
	r := NewResampler4(0)
	values := []float32{0, 0, 10, 10}
	for i, v := range values {
		f := dsp.Frame{Left: v, Right: v}
		r.PushFrame(&f, int64(i))
	}
	// frames are now [0, 0, 10, 10]; at the midpoint between the center
	// two (both still ramping) the result should land near their average.
	got := r.Get(0.5)
	if got.Left < 0 || got.Left > 10 {
		t.Fatalf("Get(0.5).Left = %v, expected to stay within the pushed frames' range", got.Left)
	}
}

func TestResampler4BecomesEmptyAfterFourMissingPushes(t *testing.T) {
	r := NewResampler4(0)
	f := dsp.Frame{Left: 1, Right: 1}
	r.PushFrame(&f, 0)
	if r.Empty() {
		t.Fatalf("expected resampler to not be empty right after a real push")
	}
	for i := 0; i < 4; i++ {
		r.PushFrame(nil, int64(i+1))
	}
	if !r.Empty() {
		t.Fatalf("expected resampler to report Empty after 4 consecutive missing pushes")
	}
}
