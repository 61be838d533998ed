package modulator

import (
	"sync/atomic"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// Tweener is the simplest Modulator: a plain tweened scalar, re-exported
// as a value source so it can be referenced by other parameters through
// Value.FromModulator the same way an Lfo can.
type Tweener struct {
	param  *tween.Parameter[float64]
	shared *tweenerShared

	setValueReader *command.Reader[tween.ValueChangeCommand[float64]]
}

type tweenerShared struct {
	removed atomic.Bool
}

// NewTweener creates a Tweener at the given initial value and its
// control-thread Handle.
func NewTweener(initial float64) (*Tweener, *TweenerHandle) {
	setValueWriter, setValueReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	shared := &tweenerShared{}
	t := &Tweener{
		param:          tween.NewParameter(tween.Fixed(initial), initial, tween.LerpFloat[float64]),
		shared:         shared,
		setValueReader: setValueReader,
	}
	h := &TweenerHandle{shared: shared, setValueWriter: setValueWriter}
	return t, h
}

// OnStartProcessing implements Modulator.
func (t *Tweener) OnStartProcessing() {
	t.param.ReadCommand(t.setValueReader)
}

// UpdateChunk implements Modulator.
func (t *Tweener) UpdateChunk(dtPerSample float64, inf info.Info, out []float64) {
	t.param.UpdateChunk(out, dtPerSample, inf)
}

// Finished implements Modulator.
func (t *Tweener) Finished() bool {
	return t.shared.removed.Load()
}

// TweenerHandle is the control-thread façade for a Tweener.
type TweenerHandle struct {
	shared         *tweenerShared
	setValueWriter *command.Writer[tween.ValueChangeCommand[float64]]
}

// SetValue begins tweening toward target.
func (h *TweenerHandle) SetValue(target tween.Value[float64], tw tween.Tween) {
	h.setValueWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// Release marks the Tweener for removal on the audio thread's next
// sweep.
func (h *TweenerHandle) Release() { h.shared.removed.Store(true) }
