// Package renderer drives the per-callback loop the audio thread runs:
// propagate sample-rate changes, drain the mixer's pending insertions,
// advance clocks and modulators chunk by chunk, ask the mixer to mix,
// and apply a renderer-wide pause/resume fade before handing frames
// back to a Backend.
package renderer

import (
	"sync/atomic"

	"github.com/resonant-audio/resound/clock"
	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/mixer"
	"github.com/resonant-audio/resound/modulator"
	"github.com/resonant-audio/resound/tween"
)

type state int

const (
	playing state = iota
	pausing
	paused
)

// Shared publishes the renderer's pause state for a lock-free read from
// the control thread, independent of the render thread's pace.
type Shared struct {
	paused atomic.Bool
}

// Paused reports whether the renderer has settled into the paused
// state: true once a Pause's fade-out has fully completed, false again
// the instant a Resume is processed (even before its fade-in finishes).
func (s *Shared) Paused() bool { return s.paused.Load() }

// Settings configures a Renderer at construction time.
type Settings struct {
	SampleRate         float64
	InternalBufferSize int
	ClockCapacity      int
	ModulatorCapacity  int
	Mixer              *mixer.Mixer
}

// Renderer owns the clock and modulator registries and drives the
// render loop over a Mixer supplied at construction.
type Renderer struct {
	dtPerSample        float64
	internalBufferSize int

	mixer      *mixer.Mixer
	clocks     *clock.Registry
	modulators *modulator.Registry

	state   state
	fade    *tween.Parameter[dsp.Decibels]
	fadeBuf []dsp.Decibels

	shared *Shared

	pauseReader  *command.Reader[tween.Tween]
	resumeReader *command.Reader[tween.Tween]
}

// New creates a Renderer and its control-thread Handle.
func New(s Settings) (*Renderer, *Handle) {
	pauseWriter, pauseReader := command.NewChannel[tween.Tween]()
	resumeWriter, resumeReader := command.NewChannel[tween.Tween]()
	shared := &Shared{}

	r := &Renderer{
		dtPerSample:         1.0 / s.SampleRate,
		internalBufferSize:  s.InternalBufferSize,
		mixer:               s.Mixer,
		clocks:              clock.NewRegistry(s.ClockCapacity),
		modulators:          modulator.NewRegistry(s.ModulatorCapacity, s.InternalBufferSize),
		state:               playing,
		fade:                tween.NewParameter(tween.Fixed(dsp.Identity), dsp.Identity, dsp.Decibels.Interpolate),
		fadeBuf:             make([]dsp.Decibels, s.InternalBufferSize),
		shared:              shared,
		pauseReader:         pauseReader,
		resumeReader:        resumeReader,
	}
	return r, &Handle{shared: shared, pauseWriter: pauseWriter, resumeWriter: resumeWriter}
}

// Clocks exposes the clock registry so a manager can reserve and insert
// clocks.
func (r *Renderer) Clocks() *clock.Registry { return r.clocks }

// Modulators exposes the modulator registry so a manager can reserve
// and insert modulators.
func (r *Renderer) Modulators() *modulator.Registry { return r.modulators }

// OnChangeSampleRate updates seconds-per-sample and propagates the
// change through the mixer to every effect. Called by the backend when
// the audio device reports a new sample rate; never called from inside
// OnStartProcessing or Process.
func (r *Renderer) OnChangeSampleRate(sampleRate float64) {
	r.dtPerSample = 1.0 / sampleRate
	r.mixer.OnChangeSampleRate(sampleRate)
}

// OnStartProcessing drains the mixer's pending track, send, and sound
// insertions/evictions, plus this renderer's own pause/resume commands.
// Call once per backend callback, before Process.
func (r *Renderer) OnStartProcessing() {
	r.mixer.OnStartProcessing()
	if tw, ok := r.pauseReader.Read(); ok && r.state == playing {
		r.fade.Set(tween.Fixed(dsp.Silence), tw)
		r.state = pausing
	}
	if tw, ok := r.resumeReader.Read(); ok && r.state != playing {
		r.fade.Set(tween.Fixed(dsp.Identity), tw)
		r.state = playing
		r.shared.paused.Store(false)
	}
}

// Process fills out with one stereo frame per sample, looping
// internally in chunks of at most InternalBufferSize. Clocks and
// modulators are drained and advanced once per chunk (cheap even when
// nothing changed, since draining an empty command channel never
// allocates); the mixer mixes each chunk, and the result is scaled by
// the renderer-wide pause/resume fade before being copied into out.
func (r *Renderer) Process(out []dsp.Frame) {
	for len(out) > 0 {
		n := len(out)
		if n > r.internalBufferSize {
			n = r.internalBufferSize
		}
		chunk := out[:n]

		r.clocks.OnStartProcessing(r.dtPerSample, n, info.EmptyInfo)
		r.modulators.OnStartProcessing()

		inf := info.Info{Clocks: r.clocks, Modulators: r.modulators}

		r.clocks.UpdateChunk(n, r.dtPerSample)
		r.modulators.UpdateChunk(n, r.dtPerSample, inf)

		r.mixer.Process(n, r.dtPerSample, inf)

		fadeBuf := r.fadeBuf[:n]
		r.fade.UpdateChunk(fadeBuf, r.dtPerSample, inf)
		if r.state == pausing && r.fade.Settled() {
			r.state = paused
			r.shared.paused.Store(true)
		}

		mixed := r.mixer.Output()
		for i := 0; i < n; i++ {
			chunk[i] = mixed[i].Scale(float32(fadeBuf[i].AsAmplitude()))
		}

		out = out[n:]
	}
}

// ProcessInterleaved renders into scratch (a caller-owned buffer with
// one slot per frame) via Process, then interleaves or averages the
// result into out: stereo for numChannels == 2, center-averaged mono
// otherwise.
func (r *Renderer) ProcessInterleaved(scratch []dsp.Frame, out []float32, numChannels int) {
	r.Process(scratch)
	if numChannels == 2 {
		for i, f := range scratch {
			out[2*i] = f.Left
			out[2*i+1] = f.Right
		}
		return
	}
	for i, f := range scratch {
		out[i] = (f.Left + f.Right) / 2
	}
}

// Handle is the control-thread façade for a Renderer's renderer-wide
// pause/resume fade.
type Handle struct {
	shared *Shared

	pauseWriter  *command.Writer[tween.Tween]
	resumeWriter *command.Writer[tween.Tween]
}

// Pause fades the entire mix to silence over tw.
func (h *Handle) Pause(tw tween.Tween) { h.pauseWriter.Write(tw) }

// Resume fades the entire mix back in over tw.
func (h *Handle) Resume(tw tween.Tween) { h.resumeWriter.Write(tw) }

// Paused reports whether the renderer has settled into the paused
// state (see Shared.Paused).
func (h *Handle) Paused() bool { return h.shared.Paused() }
