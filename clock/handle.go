package clock

import (
	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/tween"
)

// Handle is the control-thread façade for a Clock. Every method queues
// a command the Clock applies on its next OnStartProcessing; state
// reads come straight from the Clock's Shared snapshot, so they never
// block on the audio thread.
type Handle struct {
	shared *Shared

	setTickingWriter *command.Writer[bool]
	resetWriter      *command.Writer[struct{}]
	speedWriter      *command.Writer[tween.ValueChangeCommand[Speed]]
}

// Start begins (or resumes) ticking.
func (h *Handle) Start() { h.setTickingWriter.Write(true) }

// Pause stops ticking without resetting the tick count.
func (h *Handle) Pause() { h.setTickingWriter.Write(false) }

// Stop pauses and resets the tick count and fractional position to
// zero.
func (h *Handle) Stop() {
	h.setTickingWriter.Write(false)
	h.resetWriter.Write(struct{}{})
}

// SetSpeed begins tweening the clock's speed toward target.
func (h *Handle) SetSpeed(target Speed, tw tween.Tween) {
	h.speedWriter.Write(tween.ValueChangeCommand[Speed]{Target: tween.Fixed(target), Tween: tw})
}

// Ticking reports whether the clock is currently advancing.
func (h *Handle) Ticking() bool { return h.shared.Ticking() }

// Ticks returns the number of whole ticks elapsed.
func (h *Handle) Ticks() uint64 { return h.shared.Ticks() }

// FractionalPosition returns the clock's progress toward its next
// tick, in [0, 1).
func (h *Handle) FractionalPosition() float64 { return h.shared.FractionalPosition() }

// Release marks the clock for removal on the audio thread's next
// OnStartProcessing sweep. The handle must not be used afterward.
func (h *Handle) Release() { h.shared.markForRemoval() }
