// Package effect implements the Effect chain a Track runs its
// accumulated audio through before applying volume and panning.
package effect

import (
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/info"
)

// Effect processes a track's accumulated audio in place. Init and
// OnChangeSampleRate run off the audio thread (at insertion, and on a
// sample-rate change) and may allocate; OnStartProcessing and Process
// run on the audio thread once per chunk and must not.
type Effect interface {
	// Init is called exactly once, right after the effect is inserted
	// into a track, with the renderer's current sample rate and the
	// size of the buffer Process will be called with.
	Init(sampleRate float64, internalBufferSize int)
	// OnChangeSampleRate is called whenever the renderer's sample rate
	// changes after insertion.
	OnChangeSampleRate(sampleRate float64)
	// OnStartProcessing drains any pending parameter commands.
	OnStartProcessing()
	// Process transforms buf in place. len(buf) is always <=
	// internalBufferSize as given to Init.
	Process(buf []dsp.Frame, dtPerSample float64, inf info.Info)
}
