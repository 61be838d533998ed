// Package mixer wires a main track, a bounded set of sub-tracks, and a
// bounded set of send tracks into the single per-chunk graph walk the
// renderer drives: sub-tracks render first (newest-insertion-first),
// forwarding their output to the main track and, per configured route,
// to any send tracks; sends render next and forward into the main
// track; the main track renders last.
package mixer

import (
	"github.com/resonant-audio/resound/arena"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/resource"
	"github.com/resonant-audio/resound/track"
)

// ErrCapacityReached is returned when a sub-track or send track can't
// be added because its storage is full.
var ErrCapacityReached = resource.ErrCapacityReached

// Settings configures a Mixer at construction time.
type Settings struct {
	Main               track.TrackSettings
	SubTrackCapacity   int
	SendCapacity       int
	InternalBufferSize int
}

// Mixer owns the main track and the storage for sub-tracks and send
// tracks, and drives the per-chunk graph walk between them.
type Mixer struct {
	main *track.Track

	subTracks *resource.Storage[*track.Track]
	sends     *resource.Storage[*track.SendTrack]

	// routeScratch holds a route's volume-scaled copy of a sub-track's
	// output before it's summed into the target send, reused across
	// every route of every sub-track in a chunk so no per-route buffer
	// is allocated on the render path.
	routeScratch []dsp.Frame
	routeVolBuf  []dsp.Decibels

	chunkLen int
}

// New creates a Mixer and the control-thread Handle for its main track.
func New(s Settings) (*Mixer, *track.Handle) {
	main, mainHandle := track.New(s.Main)
	m := &Mixer{
		main:         main,
		subTracks:    resource.New[*track.Track](s.SubTrackCapacity),
		sends:        resource.New[*track.SendTrack](s.SendCapacity),
		routeScratch: make([]dsp.Frame, s.InternalBufferSize),
		routeVolBuf:  make([]dsp.Decibels, s.InternalBufferSize),
	}
	return m, mainHandle
}

// AddSubTrack reserves a slot, builds a sub-track from settings, and
// queues it for installation on the next OnStartProcessing call. It
// returns ErrCapacityReached if every sub-track slot is occupied.
func (m *Mixer) AddSubTrack(settings track.TrackSettings) (ids.TrackKey, *track.Handle, error) {
	key, err := m.subTracks.TryReserve()
	if err != nil {
		return ids.TrackKey{}, nil, err
	}
	t, handle := track.New(settings)
	m.subTracks.Insert(key, t)
	return ids.TrackKey(key), handle, nil
}

// AddSend reserves a slot, builds a send track from settings, and
// queues it for installation on the next OnStartProcessing call. It
// returns ErrCapacityReached if every send slot is occupied.
func (m *Mixer) AddSend(settings track.SendTrackSettings) (ids.SendKey, *track.SendTrackHandle, error) {
	key, err := m.sends.TryReserve()
	if err != nil {
		return ids.SendKey{}, nil, err
	}
	st, handle := track.NewSendTrack(settings)
	m.sends.Insert(key, st)
	return ids.SendKey(key), handle, nil
}

// SubTrack looks up a live sub-track by key, for a manager to reserve
// and insert sounds into its Sounds() storage.
func (m *Mixer) SubTrack(key ids.TrackKey) (*track.Track, bool) {
	t, ok := m.subTracks.Get(arena.Key(key))
	if !ok {
		return nil, false
	}
	return *t, true
}

// Main exposes the main track, for a manager to insert sounds that play
// directly on it rather than through a sub-track.
func (m *Mixer) Main() *track.Track {
	return m.main
}

// OnChangeSampleRate propagates a sample-rate change to the main
// track, every sub-track, and every send track's effect chain.
func (m *Mixer) OnChangeSampleRate(sampleRate float64) {
	m.main.OnChangeSampleRate(sampleRate)
	m.subTracks.Items().Iter(func(_ arena.Key, t **track.Track) { (*t).OnChangeSampleRate(sampleRate) })
	m.sends.Items().Iter(func(_ arena.Key, st **track.SendTrack) { (*st).OnChangeSampleRate(sampleRate) })
}

// OnStartProcessing drains pending sub-track and send insertions,
// evicts any that were released, and propagates to everything live.
// Call once per render chunk before Process.
func (m *Mixer) OnStartProcessing() {
	m.main.OnStartProcessing()
	m.subTracks.OnStartProcessing(func(t **track.Track) bool { return (*t).ShouldBeRemoved() })
	m.subTracks.Items().Iter(func(_ arena.Key, t **track.Track) { (*t).OnStartProcessing() })
	m.sends.OnStartProcessing(func(st **track.SendTrack) bool { return (*st).ShouldBeRemoved() })
	m.sends.Items().Iter(func(_ arena.Key, st **track.SendTrack) { (*st).OnStartProcessing() })
}

// Process walks the graph for one chunk of n frames: resets every
// accumulator, renders sub-tracks newest-first and routes their output
// to the main track and their configured sends, renders sends and
// routes their output to the main track, then renders the main track.
// The result is available from Output until the next Process.
func (m *Mixer) Process(n int, dtPerSample float64, inf info.Info) {
	m.chunkLen = n
	m.main.ResetInput(n)
	m.sends.Items().Iter(func(_ arena.Key, st **track.SendTrack) { (*st).ResetInput(n) })

	scratch := m.routeScratch[:n]
	volBuf := m.routeVolBuf[:n]

	m.subTracks.Items().Iter(func(_ arena.Key, t **track.Track) {
		sub := *t
		sub.ResetInput(n)
		sub.Process(dtPerSample, inf)
		out := sub.Output()

		m.main.AddInput(out)

		for sendKey, route := range sub.Routes() {
			send, ok := m.sends.Get(arena.Key(sendKey))
			if !ok {
				continue
			}
			route.UpdateChunk(volBuf, dtPerSample, inf)
			for i := range out {
				scratch[i] = out[i].Scale(float32(volBuf[i].AsAmplitude()))
			}
			(*send).AddInput(scratch)
		}
	})

	m.sends.Items().Iter(func(_ arena.Key, st **track.SendTrack) {
		send := *st
		send.Process(dtPerSample, inf)
		m.main.AddInput(send.Output())
	})

	m.main.Process(dtPerSample, inf)
}

// Output returns the main track's processed result for this chunk.
func (m *Mixer) Output() []dsp.Frame {
	return m.main.Output()
}
