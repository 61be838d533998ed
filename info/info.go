// Package info defines the read-only view of clocks and modulators that
// is threaded through every per-chunk update call (Parameter.UpdateChunk,
// Modulator.UpdateChunk, Sound.Process, Effect.Process). It exists as
// its own package so tween, clock, and modulator don't form an import
// cycle: tween.Parameter needs to resolve a StartTime::ClockTime or a
// Value::FromModulator, but clock.Clock and modulator.Modulator both
// hold Parameter fields of their own.
package info

import "github.com/resonant-audio/resound/ids"

// ClockInfo is one clock's state as of that clock's most recent
// UpdateChunk, i.e. at the end of the render chunk being processed.
type ClockInfo struct {
	Ticking            bool
	Ticks              uint64
	FractionalPosition float64
}

// ClockInfoProvider resolves a ClockKey to its current state. Returns
// ok=false if the clock has been removed (its handle was dropped).
type ClockInfoProvider interface {
	ClockInfo(key ids.ClockKey) (ClockInfo, bool)
}

// ModulatorValueProvider resolves a ModulatorKey to its most recently
// computed value. Returns ok=false if the modulator has been removed.
type ModulatorValueProvider interface {
	ModulatorValue(key ids.ModulatorKey) (float64, bool)
}

// Info bundles both providers; it's what update_chunk-style methods
// receive each render chunk.
type Info struct {
	Clocks     ClockInfoProvider
	Modulators ModulatorValueProvider
}

// EmptyInfo resolves every clock and modulator lookup to "not found". It's
// useful for tests and for components (like an Effect with no tween
// dependencies) that never consult Info.
var EmptyInfo = Info{Clocks: emptyProvider{}, Modulators: emptyProvider{}}

type emptyProvider struct{}

func (emptyProvider) ClockInfo(ids.ClockKey) (ClockInfo, bool)        { return ClockInfo{}, false }
func (emptyProvider) ModulatorValue(ids.ModulatorKey) (float64, bool) { return 0, false }
