package effect

import (
	"math"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// FilterMode selects which frequencies a Filter removes.
type FilterMode int

const (
	// LowPass removes frequencies above the cutoff.
	LowPass FilterMode = iota
	// BandPass removes frequencies above and below the cutoff.
	BandPass
	// HighPass removes frequencies below the cutoff.
	HighPass
	// Notch removes frequencies around the cutoff.
	Notch
)

// FilterSettings configures a Filter at construction time.
type FilterSettings struct {
	Mode FilterMode
	// Cutoff is the filter's cutoff frequency in Hz, clamped to
	// [20, 20000].
	Cutoff tween.Value[float64]
	// Resonance is the filter's feedback amount, clamped to [0, 1].
	// Higher values produce a more pronounced ringing at the cutoff.
	Resonance tween.Value[float64]
	// Mix blends dry (0) and wet (1) signal, clamped to [0, 1].
	Mix tween.Value[float64]
}

// Filter is a state-variable (Chamberlin/"SVF Simper") filter, the one
// nontrivial Effect: two samples of history (ic1eq, ic2eq) per instance,
// carried across chunks, so it cannot be expressed as a pure per-sample
// function the way Gain is.
type Filter struct {
	mode         FilterMode
	cutoff       *tween.Parameter[float64]
	resonance    *tween.Parameter[float64]
	mix          *tween.Parameter[float64]
	cutoffBuf    []float64
	resonanceBuf []float64
	mixBuf       []float64
	ic1eq, ic2eq dsp.Frame

	setCutoffReader    *command.Reader[tween.ValueChangeCommand[float64]]
	setResonanceReader *command.Reader[tween.ValueChangeCommand[float64]]
	setMixReader       *command.Reader[tween.ValueChangeCommand[float64]]
}

// NewFilter creates a Filter effect and its control-thread Handle.
func NewFilter(s FilterSettings) (*Filter, *FilterHandle) {
	cutoffWriter, cutoffReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	resonanceWriter, resonanceReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	mixWriter, mixReader := command.NewChannel[tween.ValueChangeCommand[float64]]()

	f := &Filter{
		mode:               s.Mode,
		cutoff:             tween.NewParameter(s.Cutoff, 10000.0, tween.LerpFloat[float64]),
		resonance:          tween.NewParameter(s.Resonance, 0.0, tween.LerpFloat[float64]),
		mix:                tween.NewParameter(s.Mix, 1.0, tween.LerpFloat[float64]),
		setCutoffReader:    cutoffReader,
		setResonanceReader: resonanceReader,
		setMixReader:       mixReader,
	}
	handle := &FilterHandle{
		setCutoffWriter:    cutoffWriter,
		setResonanceWriter: resonanceWriter,
		setMixWriter:       mixWriter,
	}
	return f, handle
}

// Init implements Effect.
func (f *Filter) Init(sampleRate float64, internalBufferSize int) {
	f.cutoffBuf = make([]float64, internalBufferSize)
	f.resonanceBuf = make([]float64, internalBufferSize)
	f.mixBuf = make([]float64, internalBufferSize)
}

// OnChangeSampleRate implements Effect: the cutoff/sampleRate ratio is
// recomputed fresh every Process call, so there's nothing to redo here.
func (f *Filter) OnChangeSampleRate(sampleRate float64) {}

// OnStartProcessing implements Effect.
func (f *Filter) OnStartProcessing() {
	f.cutoff.ReadCommand(f.setCutoffReader)
	f.resonance.ReadCommand(f.setResonanceReader)
	f.mix.ReadCommand(f.setMixReader)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Process implements Effect.
func (f *Filter) Process(buf []dsp.Frame, dtPerSample float64, inf info.Info) {
	n := len(buf)
	cutoffBuf, resonanceBuf, mixBuf := f.cutoffBuf[:n], f.resonanceBuf[:n], f.mixBuf[:n]
	f.cutoff.UpdateChunk(cutoffBuf, dtPerSample, inf)
	f.resonance.UpdateChunk(resonanceBuf, dtPerSample, inf)
	f.mix.UpdateChunk(mixBuf, dtPerSample, inf)

	sampleRate := 1.0 / dtPerSample
	for i := range buf {
		cutoff := clamp(cutoffBuf[i], 20.0, 20000.0)
		resonance := clamp(resonanceBuf[i], 0.0, 1.0)
		mix := clamp(mixBuf[i], 0.0, 1.0)

		g := math.Tan(math.Pi * (cutoff / sampleRate))
		k := 2.0 - 1.9*resonance
		a1 := 1.0 / (1.0 + g*(g+k))
		a2 := g * a1
		a3 := g * a2

		input := buf[i]
		v3 := input.Sub(f.ic2eq)
		v1 := f.ic1eq.Scale(float32(a1)).Add(v3.Scale(float32(a2)))
		v2 := f.ic2eq.Add(f.ic1eq.Scale(float32(a2))).Add(v3.Scale(float32(a3)))
		f.ic1eq = v1.Scale(2).Sub(f.ic1eq)
		f.ic2eq = v2.Scale(2).Sub(f.ic2eq)

		var output dsp.Frame
		switch f.mode {
		case LowPass:
			output = v2
		case BandPass:
			output = v1
		case HighPass:
			output = input.Sub(v1.Scale(float32(k))).Sub(v2)
		case Notch:
			output = input.Sub(v1.Scale(float32(k)))
		}

		wet := float32(math.Sqrt(mix))
		dry := float32(math.Sqrt(1 - mix))
		buf[i] = output.Scale(wet).Add(input.Scale(dry))
	}
}

// FilterHandle is the control-thread façade for a Filter effect.
type FilterHandle struct {
	setCutoffWriter    *command.Writer[tween.ValueChangeCommand[float64]]
	setResonanceWriter *command.Writer[tween.ValueChangeCommand[float64]]
	setMixWriter       *command.Writer[tween.ValueChangeCommand[float64]]
}

// SetCutoff begins tweening the filter's cutoff frequency.
func (h *FilterHandle) SetCutoff(target tween.Value[float64], tw tween.Tween) {
	h.setCutoffWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// SetResonance begins tweening the filter's resonance.
func (h *FilterHandle) SetResonance(target tween.Value[float64], tw tween.Tween) {
	h.setResonanceWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// SetMix begins tweening the filter's dry/wet mix.
func (h *FilterHandle) SetMix(target tween.Value[float64], tw tween.Tween) {
	h.setMixWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}
