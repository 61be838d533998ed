// Package modulator implements pluggable audio-thread value sources —
// an LFO and a plain tweened scalar — that a Value[T] can map into any
// controllable parameter through its FromModulator variant.
package modulator

import "github.com/resonant-audio/resound/info"

// Modulator is a value source sampled once per render chunk.
// UpdateChunk fills out with one value per sample (only the last is
// ever consulted through info.ModulatorValueProvider, but built-ins
// like the LFO compute every sample internally regardless, since doing
// so is no more expensive than computing just the last one and keeps
// the door open for effects that want the full buffer).
type Modulator interface {
	OnStartProcessing()
	UpdateChunk(dtPerSample float64, inf info.Info, out []float64)
	Finished() bool
}
