package clock

import (
	"math"
	"sync/atomic"
)

// Shared publishes a Clock's state for lock-free reads from a Handle
// on the control thread, independent of the render thread's pace.
// Updated once per OnStartProcessing, not every sample.
type Shared struct {
	ticking            atomic.Bool
	ticks              atomic.Uint64
	fractionalPosition atomic.Uint64
	removed            atomic.Bool
}

// Ticking reports whether the clock is currently advancing.
func (s *Shared) Ticking() bool { return s.ticking.Load() }

// Ticks returns the number of whole ticks elapsed.
func (s *Shared) Ticks() uint64 { return s.ticks.Load() }

// FractionalPosition returns the progress toward the next tick, in
// [0, 1).
func (s *Shared) FractionalPosition() float64 {
	return math.Float64frombits(s.fractionalPosition.Load())
}

func (s *Shared) publish(ticking bool, ticks uint64, fractionalPosition float64) {
	s.ticking.Store(ticking)
	s.ticks.Store(ticks)
	s.fractionalPosition.Store(math.Float64bits(fractionalPosition))
}

// markForRemoval flags the clock for cleanup on the next
// OnStartProcessing sweep. Called from Handle.Release.
func (s *Shared) markForRemoval() { s.removed.Store(true) }

// isMarkedForRemoval reports whether Release has been called.
func (s *Shared) isMarkedForRemoval() bool { return s.removed.Load() }
