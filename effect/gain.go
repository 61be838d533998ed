package effect

import (
	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// GainSettings configures a Gain effect at construction time.
type GainSettings struct {
	Volume tween.Value[dsp.Decibels]
}

// Gain is the simplest possible Effect: a tweenable volume trim with no
// internal state besides the tween itself. It exists to ground the
// Effect interface in something trivial before Filter grounds it in
// something that actually needs history.
type Gain struct {
	volume    *tween.Parameter[dsp.Decibels]
	volumeBuf []dsp.Decibels

	setVolumeReader *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]
}

// NewGain creates a Gain effect and its control-thread Handle.
func NewGain(s GainSettings) (*Gain, *GainHandle) {
	writer, reader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	g := &Gain{
		volume:          tween.NewParameter(s.Volume, dsp.Identity, dsp.Decibels.Interpolate),
		setVolumeReader: reader,
	}
	return g, &GainHandle{setVolumeWriter: writer}
}

// Init implements Effect.
func (g *Gain) Init(sampleRate float64, internalBufferSize int) {
	g.volumeBuf = make([]dsp.Decibels, internalBufferSize)
}

// OnChangeSampleRate implements Effect: gain has no sample-rate-derived
// state to recompute.
func (g *Gain) OnChangeSampleRate(sampleRate float64) {}

// OnStartProcessing implements Effect.
func (g *Gain) OnStartProcessing() {
	g.volume.ReadCommand(g.setVolumeReader)
}

// Process implements Effect.
func (g *Gain) Process(buf []dsp.Frame, dtPerSample float64, inf info.Info) {
	n := len(buf)
	volBuf := g.volumeBuf[:n]
	g.volume.UpdateChunk(volBuf, dtPerSample, inf)
	for i := range buf {
		buf[i] = buf[i].Scale(float32(volBuf[i].AsAmplitude()))
	}
}

// GainHandle is the control-thread façade for a Gain effect.
type GainHandle struct {
	setVolumeWriter *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
}

// SetVolume begins tweening the gain's volume.
func (h *GainHandle) SetVolume(target tween.Value[dsp.Decibels], tw tween.Tween) {
	h.setVolumeWriter.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
}
