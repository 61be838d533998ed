package modulator

import (
	"math"
	"sync/atomic"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// Lfo oscillates between an offset-shifted amplitude range at a given
// frequency, using one of a small set of waveforms. Frequency,
// amplitude, and offset are themselves tweened Parameter[float64]
// values, so they can be set with a tween or driven by another
// modulator.
type Lfo struct {
	waveform  Waveform
	frequency *tween.Parameter[float64]
	amplitude *tween.Parameter[float64]
	offset    *tween.Parameter[float64]

	phase float64
	value float64

	frequencyBuf, amplitudeBuf, offsetBuf []float64

	shared *lfoShared

	setWaveformReader  *command.Reader[Waveform]
	setFrequencyReader *command.Reader[tween.ValueChangeCommand[float64]]
	setAmplitudeReader *command.Reader[tween.ValueChangeCommand[float64]]
	setOffsetReader    *command.Reader[tween.ValueChangeCommand[float64]]
	setPhaseReader     *command.Reader[float64]
}

type lfoShared struct {
	removed atomic.Bool
}

// LfoSettings configures the initial state of a new Lfo.
type LfoSettings struct {
	Waveform           Waveform
	Frequency          tween.Value[float64]
	Amplitude          tween.Value[float64]
	Offset             tween.Value[float64]
	StartingPhase      float64 // radians
	InternalBufferSize int
}

// NewLfo creates an Lfo and its control-thread Handle.
func NewLfo(s LfoSettings) (*Lfo, *LfoHandle) {
	setWaveformWriter, setWaveformReader := command.NewChannel[Waveform]()
	setFrequencyWriter, setFrequencyReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	setAmplitudeWriter, setAmplitudeReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	setOffsetWriter, setOffsetReader := command.NewChannel[tween.ValueChangeCommand[float64]]()
	setPhaseWriter, setPhaseReader := command.NewChannel[float64]()

	shared := &lfoShared{}

	l := &Lfo{
		waveform:           s.Waveform,
		frequency:          tween.NewParameter(s.Frequency, 2.0, tween.LerpFloat[float64]),
		amplitude:          tween.NewParameter(s.Amplitude, 1.0, tween.LerpFloat[float64]),
		offset:             tween.NewParameter(s.Offset, 0.0, tween.LerpFloat[float64]),
		phase:              math.Mod(s.StartingPhase, 2*math.Pi) / (2 * math.Pi),
		frequencyBuf:       make([]float64, s.InternalBufferSize),
		amplitudeBuf:       make([]float64, s.InternalBufferSize),
		offsetBuf:          make([]float64, s.InternalBufferSize),
		shared:             shared,
		setWaveformReader:  setWaveformReader,
		setFrequencyReader: setFrequencyReader,
		setAmplitudeReader: setAmplitudeReader,
		setOffsetReader:    setOffsetReader,
		setPhaseReader:     setPhaseReader,
	}
	h := &LfoHandle{
		shared:             shared,
		setWaveformWriter:  setWaveformWriter,
		setFrequencyWriter: setFrequencyWriter,
		setAmplitudeWriter: setAmplitudeWriter,
		setOffsetWriter:    setOffsetWriter,
		setPhaseWriter:     setPhaseWriter,
	}
	return l, h
}

// OnStartProcessing implements Modulator.
func (l *Lfo) OnStartProcessing() {
	if w, ok := l.setWaveformReader.Read(); ok {
		l.waveform = w
	}
	l.frequency.ReadCommand(l.setFrequencyReader)
	l.amplitude.ReadCommand(l.setAmplitudeReader)
	l.offset.ReadCommand(l.setOffsetReader)
	if phase, ok := l.setPhaseReader.Read(); ok {
		l.phase = math.Mod(phase, 2*math.Pi) / (2 * math.Pi)
	}
}

// UpdateChunk implements Modulator.
func (l *Lfo) UpdateChunk(dtPerSample float64, inf info.Info, out []float64) {
	n := len(out)
	freqBuf := l.frequencyBuf[:n]
	ampBuf := l.amplitudeBuf[:n]
	offBuf := l.offsetBuf[:n]
	l.frequency.UpdateChunk(freqBuf, dtPerSample, inf)
	l.amplitude.UpdateChunk(ampBuf, dtPerSample, inf)
	l.offset.UpdateChunk(offBuf, dtPerSample, inf)

	for i := 0; i < n; i++ {
		l.phase += dtPerSample * freqBuf[i]
		l.phase = fract(l.phase)
		l.value = offBuf[i] + ampBuf[i]*l.waveform.value(l.phase)
		out[i] = l.value
	}
}

// Finished implements Modulator.
func (l *Lfo) Finished() bool {
	return l.shared.removed.Load()
}

// LfoHandle is the control-thread façade for an Lfo.
type LfoHandle struct {
	shared *lfoShared

	setWaveformWriter  *command.Writer[Waveform]
	setFrequencyWriter *command.Writer[tween.ValueChangeCommand[float64]]
	setAmplitudeWriter *command.Writer[tween.ValueChangeCommand[float64]]
	setOffsetWriter    *command.Writer[tween.ValueChangeCommand[float64]]
	setPhaseWriter     *command.Writer[float64]
}

// SetWaveform changes the oscillation pattern, taking effect on the
// next render chunk.
func (h *LfoHandle) SetWaveform(w Waveform) { h.setWaveformWriter.Write(w) }

// SetFrequency begins tweening the oscillation frequency (in Hz).
func (h *LfoHandle) SetFrequency(target tween.Value[float64], tw tween.Tween) {
	h.setFrequencyWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// SetAmplitude begins tweening the oscillation amplitude.
func (h *LfoHandle) SetAmplitude(target tween.Value[float64], tw tween.Tween) {
	h.setAmplitudeWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// SetOffset begins tweening the value the oscillation is centered on.
func (h *LfoHandle) SetOffset(target tween.Value[float64], tw tween.Tween) {
	h.setOffsetWriter.Write(tween.ValueChangeCommand[float64]{Target: target, Tween: tw})
}

// SetPhase jumps the oscillator directly to phase (in radians).
func (h *LfoHandle) SetPhase(phase float64) { h.setPhaseWriter.Write(phase) }

// Release marks the Lfo for removal on the audio thread's next sweep.
func (h *LfoHandle) Release() { h.shared.removed.Store(true) }
