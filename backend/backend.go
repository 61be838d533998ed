// Package backend abstracts the platform audio device a renderer is
// pumped from, and provides a deterministic mock implementation for
// tests and examples that don't need a real device.
package backend

import "github.com/resonant-audio/resound/renderer"

// Info reports the sample rate and channel count a Backend actually
// negotiated with its device, which may differ from what Setup was
// asked for.
type Info struct {
	SampleRate float64
	Channels   int
}

// Backend drives a renderer.Renderer from whatever produces audio
// callbacks on the platform: a real device, or (for MockBackend) an
// explicit Tick call.
type Backend interface {
	// Setup negotiates a sample rate and channel count with the
	// device, before any Renderer exists. preferredSampleRate or
	// channels of 0 lets the backend pick.
	Setup(preferredSampleRate float64, channels int) (Info, error)
	// Start hands over the renderer that every future callback must
	// drive via OnStartProcessing then ProcessInterleaved.
	Start(r *renderer.Renderer) error
	// Stop releases the device. Safe to call on an already-stopped
	// backend.
	Stop() error
}
