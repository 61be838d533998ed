package track

import (
	"sync/atomic"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/effect"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// sendShared carries the one atomic a SendTrack and its
// SendTrackHandle both need: whether the handle has been released.
type sendShared struct {
	removed atomic.Bool
}

// SendTrackSettings configures a send track at construction time.
type SendTrackSettings struct {
	Volume             tween.Value[dsp.Decibels]
	InternalBufferSize int
}

// SendTrack receives contributions from sub-tracks via AddInput, runs
// its own effect chain, and writes a scaled copy of its result into the
// main track. Unlike Track it has no sounds of its own and no routes:
// it exists purely to let several sub-tracks share one effect (a
// reverb bus, say) instead of each running a copy.
type SendTrack struct {
	volume  *tween.Parameter[dsp.Decibels]
	effects []effect.Effect

	volumeBuf []dsp.Decibels

	input    []dsp.Frame
	chunkLen int

	setVolumeReader *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]

	shared *sendShared
}

// NewSendTrack creates a SendTrack and its control-thread Handle.
func NewSendTrack(s SendTrackSettings) (*SendTrack, *SendTrackHandle) {
	writer, reader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	shared := &sendShared{}
	st := &SendTrack{
		volume:          tween.NewParameter(s.Volume, dsp.Identity, dsp.Decibels.Interpolate),
		volumeBuf:       make([]dsp.Decibels, s.InternalBufferSize),
		input:           make([]dsp.Frame, s.InternalBufferSize),
		setVolumeReader: reader,
		shared:          shared,
	}
	return st, &SendTrackHandle{shared: shared, setVolumeWriter: writer}
}

// ShouldBeRemoved reports whether the paired SendTrackHandle has been
// released, the mixer's cue to evict this send track on its next
// OnStartProcessing sweep.
func (st *SendTrack) ShouldBeRemoved() bool { return st.shared.removed.Load() }

// AddEffect appends e to the send track's effect chain and initializes
// it.
func (st *SendTrack) AddEffect(e effect.Effect, sampleRate float64) {
	e.Init(sampleRate, len(st.input))
	st.effects = append(st.effects, e)
}

// OnChangeSampleRate propagates a sample-rate change to every effect.
func (st *SendTrack) OnChangeSampleRate(sampleRate float64) {
	for _, e := range st.effects {
		e.OnChangeSampleRate(sampleRate)
	}
}

// OnStartProcessing drains pending commands.
func (st *SendTrack) OnStartProcessing() {
	st.volume.ReadCommand(st.setVolumeReader)
	for _, e := range st.effects {
		e.OnStartProcessing()
	}
}

// ResetInput zeroes the first n frames of the accumulator and records n
// as this chunk's length. The mixer calls this before any sub-track
// routes into the send for the chunk.
func (st *SendTrack) ResetInput(n int) {
	st.chunkLen = n
	for i := 0; i < n; i++ {
		st.input[i] = dsp.Zero
	}
}

// AddInput sums in into the send's accumulator.
func (st *SendTrack) AddInput(in []dsp.Frame) {
	for i := range in {
		st.input[i] = st.input[i].Add(in[i])
	}
}

// Process runs the effect chain over the accumulated input and scales
// it by the send's volume. The result is available from Output.
func (st *SendTrack) Process(dtPerSample float64, inf info.Info) {
	n := st.chunkLen
	out := st.input[:n]
	for _, e := range st.effects {
		e.Process(out, dtPerSample, inf)
	}
	volBuf := st.volumeBuf[:n]
	st.volume.UpdateChunk(volBuf, dtPerSample, inf)
	for i := range out {
		out[i] = out[i].Scale(float32(volBuf[i].AsAmplitude()))
	}
}

// Output returns the send's processed result for this chunk.
func (st *SendTrack) Output() []dsp.Frame {
	return st.input[:st.chunkLen]
}

// SendTrackHandle is the control-thread façade for a SendTrack.
type SendTrackHandle struct {
	shared *sendShared

	setVolumeWriter *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
}

// SetVolume begins tweening the send track's volume.
func (h *SendTrackHandle) SetVolume(target tween.Value[dsp.Decibels], tw tween.Tween) {
	h.setVolumeWriter.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
}

// Release marks the send track for removal on the audio thread's next
// OnStartProcessing sweep. The handle must not be used afterward.
func (h *SendTrackHandle) Release() { h.shared.removed.Store(true) }
