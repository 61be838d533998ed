package backend

import (
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/renderer"
)

// MockBackend drives a Renderer synchronously in response to explicit
// Tick calls instead of a real device callback thread. It never
// connects to any OS audio API; it exists for tests, benchmarks, and
// example programs that want deterministic, driver-free output,
// grounded on the ported MockBackend's "allows manually calling
// on_start_processing and process" role.
type MockBackend struct {
	sampleRate float64
	channels   int
	r          *renderer.Renderer
}

// NewMock creates a MockBackend that reports sampleRate/channels from
// Setup regardless of what's requested there — a mock has no device to
// negotiate with.
func NewMock(sampleRate float64, channels int) *MockBackend {
	return &MockBackend{sampleRate: sampleRate, channels: channels}
}

// Setup implements Backend.
func (b *MockBackend) Setup(float64, int) (Info, error) {
	return Info{SampleRate: b.sampleRate, Channels: b.channels}, nil
}

// Start implements Backend.
func (b *MockBackend) Start(r *renderer.Renderer) error {
	b.r = r
	return nil
}

// Stop implements Backend.
func (b *MockBackend) Stop() error {
	b.r = nil
	return nil
}

// Tick drives exactly one render callback: OnStartProcessing followed
// by a Process call filling scratch (one frame per sample) and
// interleaving into out. Panics if Start hasn't been called yet,
// matching the ported mock's panic-on-uninitialized-use behavior.
func (b *MockBackend) Tick(scratch []dsp.Frame, out []float32) {
	if b.r == nil {
		panic("backend: MockBackend ticked before Start")
	}
	b.r.OnStartProcessing()
	b.r.ProcessInterleaved(scratch, out, b.channels)
}
