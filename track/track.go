// Package track implements the mixer graph node every sound and send
// ultimately flows through: sub-tracks sum their sounds, run an effect
// chain, apply volume/panning, and forward their result to the main
// track and to any routed send tracks; the main track is the same
// shape without routes.
package track

import (
	"sync/atomic"

	"github.com/resonant-audio/resound/arena"
	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/effect"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/resource"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/tween"
)

// trackShared carries the one atomic a Track and its Handle both need:
// whether the handle has been released, so the mixer can evict the
// track on its next OnStartProcessing sweep.
type trackShared struct {
	removed atomic.Bool
}

// Route is a sub-track's tweenable send to one SendTrack, read once per
// chunk and applied on top of the sub-track's own volume/panning.
type Route struct {
	volume          *tween.Parameter[dsp.Decibels]
	setVolumeReader *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]
}

func newRoute(initial tween.Value[dsp.Decibels]) (*Route, *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]) {
	writer, reader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	return &Route{
		volume:          tween.NewParameter(initial, dsp.Identity, dsp.Decibels.Interpolate),
		setVolumeReader: reader,
	}, writer
}

func (r *Route) readCommand() {
	r.volume.ReadCommand(r.setVolumeReader)
}

// UpdateChunk writes this route's per-sample volume for the chunk into
// out.
func (r *Route) UpdateChunk(out []dsp.Decibels, dtPerSample float64, inf info.Info) {
	r.volume.UpdateChunk(out, dtPerSample, inf)
}

// TrackSettings configures a sub-track (or the main track) at
// construction time.
type TrackSettings struct {
	Volume             tween.Value[dsp.Decibels]
	Panning            tween.Value[dsp.Panning]
	Routes             map[ids.SendKey]tween.Value[dsp.Decibels]
	SoundCapacity      int
	InternalBufferSize int
}

// Track is a mixer node: a bounded set of concurrently-playing sounds,
// an effect chain, and (for sub-tracks) a set of sends. The main track
// is a Track built with no routes.
type Track struct {
	volume  *tween.Parameter[dsp.Decibels]
	panning *tween.Parameter[dsp.Panning]

	volumeBuf []dsp.Decibels
	panBuf    []dsp.Panning

	sounds  *resource.Storage[sound.Sound]
	effects []effect.Effect

	routes map[ids.SendKey]*Route

	// input is both the accumulator sounds are summed into and, after
	// Process runs, the track's processed output. The mixer zeroes it
	// (via ResetInput) once per chunk before anything may add to it.
	// chunkLen is how much of input is live for the current chunk (the
	// renderer may process a final partial chunk shorter than
	// internalBufferSize).
	input    []dsp.Frame
	scratch  []dsp.Frame
	chunkLen int

	setVolumeReader  *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningReader *command.Reader[tween.ValueChangeCommand[dsp.Panning]]

	shared *trackShared
}

// New creates a Track and its control-thread Handle.
func New(s TrackSettings) (*Track, *Handle) {
	volumeWriter, volumeReader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	panningWriter, panningReader := command.NewChannel[tween.ValueChangeCommand[dsp.Panning]]()

	routes := make(map[ids.SendKey]*Route, len(s.Routes))
	routeWriters := make(map[ids.SendKey]*command.Writer[tween.ValueChangeCommand[dsp.Decibels]], len(s.Routes))
	for key, initial := range s.Routes {
		route, writer := newRoute(initial)
		routes[key] = route
		routeWriters[key] = writer
	}

	shared := &trackShared{}
	t := &Track{
		volume:           tween.NewParameter(s.Volume, dsp.Identity, dsp.Decibels.Interpolate),
		panning:          tween.NewParameter(s.Panning, dsp.PanCenter, dsp.Panning.Interpolate),
		volumeBuf:        make([]dsp.Decibels, s.InternalBufferSize),
		panBuf:           make([]dsp.Panning, s.InternalBufferSize),
		sounds:           resource.New[sound.Sound](s.SoundCapacity),
		routes:           routes,
		input:            make([]dsp.Frame, s.InternalBufferSize),
		scratch:          make([]dsp.Frame, s.InternalBufferSize),
		setVolumeReader:  volumeReader,
		setPanningReader: panningReader,
		shared:           shared,
	}
	return t, &Handle{
		shared:           shared,
		setVolumeWriter:  volumeWriter,
		setPanningWriter: panningWriter,
		routeWriters:     routeWriters,
	}
}

// ShouldBeRemoved reports whether the paired Handle has been released,
// the mixer's cue to evict this sub-track on its next OnStartProcessing
// sweep.
func (t *Track) ShouldBeRemoved() bool { return t.shared.removed.Load() }

// Sounds exposes the track's sound storage so a manager can reserve and
// insert sound instances into it.
func (t *Track) Sounds() *resource.Storage[sound.Sound] {
	return t.sounds
}

// AddEffect appends e to the track's effect chain and initializes it.
// Only valid before the track is handed to the audio thread, or from
// the control thread between render chunks with sampleRate already
// known; effects may allocate here.
func (t *Track) AddEffect(e effect.Effect, sampleRate float64) {
	e.Init(sampleRate, len(t.input))
	t.effects = append(t.effects, e)
}

// OnChangeSampleRate propagates a sample-rate change to every effect
// and installed sound is unaffected (sounds read dt per chunk, not a
// cached sample rate).
func (t *Track) OnChangeSampleRate(sampleRate float64) {
	for _, e := range t.effects {
		e.OnChangeSampleRate(sampleRate)
	}
}

// OnStartProcessing drains pending commands and admits/evicts sounds.
func (t *Track) OnStartProcessing() {
	t.volume.ReadCommand(t.setVolumeReader)
	t.panning.ReadCommand(t.setPanningReader)
	for _, r := range t.routes {
		r.readCommand()
	}
	t.sounds.OnStartProcessing(func(s *sound.Sound) bool { return (*s).Finished() })
	t.sounds.Items().Iter(func(_ arena.Key, s *sound.Sound) {
		(*s).OnStartProcessing()
	})
	for _, e := range t.effects {
		e.OnStartProcessing()
	}
}

// ResetInput zeroes the first n frames of the track's input
// accumulator and records n as this chunk's length. The mixer calls
// this once per chunk, before anything (sounds, routed sub-tracks, or
// send contributions) may add to it.
func (t *Track) ResetInput(n int) {
	t.chunkLen = n
	for i := 0; i < n; i++ {
		t.input[i] = dsp.Zero
	}
}

// AddInput sums in into the track's accumulator. Used by the mixer to
// route a sub-track's finished output into the main track, or a send's
// processed output into the main track. len(in) must not exceed the
// chunk length passed to the most recent ResetInput.
func (t *Track) AddInput(in []dsp.Frame) {
	for i := range in {
		t.input[i] = t.input[i].Add(in[i])
	}
}

// Process sums every live sound into the accumulator, runs the effect
// chain over it, and applies volume/panning in place. Call ResetInput
// first. The result is available from Output until the next
// ResetInput.
func (t *Track) Process(dtPerSample float64, inf info.Info) {
	n := t.chunkLen
	scratch := t.scratch[:n]
	t.sounds.Items().Iter(func(_ arena.Key, s *sound.Sound) {
		for i := range scratch {
			scratch[i] = dsp.Zero
		}
		(*s).Process(scratch, dtPerSample, inf)
		for i := range scratch {
			t.input[i] = t.input[i].Add(scratch[i])
		}
	})

	out := t.input[:n]
	for _, e := range t.effects {
		e.Process(out, dtPerSample, inf)
	}

	volBuf, panBuf := t.volumeBuf[:n], t.panBuf[:n]
	t.volume.UpdateChunk(volBuf, dtPerSample, inf)
	t.panning.UpdateChunk(panBuf, dtPerSample, inf)
	for i := range out {
		amplitude := float32(volBuf[i].AsAmplitude())
		out[i] = out[i].Panned(float32(panBuf[i])).Scale(amplitude)
	}
}

// Output returns the track's processed accumulator for this chunk,
// valid after Process has run and until the next ResetInput.
func (t *Track) Output() []dsp.Frame {
	return t.input[:t.chunkLen]
}

// Routes exposes each configured send route so the mixer can scale this
// track's output per route and forward it to the right SendTrack.
func (t *Track) Routes() map[ids.SendKey]*Route {
	return t.routes
}

// Handle is the control-thread façade for a Track.
type Handle struct {
	shared *trackShared

	setVolumeWriter  *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningWriter *command.Writer[tween.ValueChangeCommand[dsp.Panning]]
	routeWriters     map[ids.SendKey]*command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
}

// SetVolume begins tweening the track's volume.
func (h *Handle) SetVolume(target tween.Value[dsp.Decibels], tw tween.Tween) {
	h.setVolumeWriter.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
}

// SetPanning begins tweening the track's pan position.
func (h *Handle) SetPanning(target tween.Value[dsp.Panning], tw tween.Tween) {
	h.setPanningWriter.Write(tween.ValueChangeCommand[dsp.Panning]{Target: target, Tween: tw})
}

// SetRouteVolume begins tweening an existing route's volume. Adding a
// new route after construction isn't supported, matching kira's
// "can only change the volume of existing routes" restriction.
func (h *Handle) SetRouteVolume(to ids.SendKey, target tween.Value[dsp.Decibels], tw tween.Tween) bool {
	writer, ok := h.routeWriters[to]
	if !ok {
		return false
	}
	writer.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
	return true
}

// Release marks the sub-track for removal on the audio thread's next
// OnStartProcessing sweep. The handle must not be used afterward. Has
// no effect on the main track, which isn't evicted by the mixer.
func (h *Handle) Release() { h.shared.removed.Store(true) }
