// Package manager implements AudioManager, the single entry point a
// host application constructs: it owns the mixer, the renderer, and a
// backend.Backend together, wiring them through the same two-phase
// handshake kira's AudioManager::new does (negotiate a sample
// rate with the backend, build everything that depends on it, then
// hand the renderer to the backend to start pumping).
package manager

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/resonant-audio/resound/backend"
	"github.com/resonant-audio/resound/clock"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/mixer"
	"github.com/resonant-audio/resound/modulator"
	"github.com/resonant-audio/resound/renderer"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/track"
)

// AudioManager owns the whole audio graph: a mixer (main track plus
// sub-tracks and sends), a renderer driving clocks/modulators/the
// mixer each chunk, and the backend pumping the renderer. The
// Add*/Play* methods may be called from any goroutine other than the
// audio thread, but from only one goroutine at a time: the command
// channels and resource rings behind them are single-producer. None
// of them ever touch the audio thread directly, only the lock-free command
// channels and resource arenas the renderer drains on its own schedule.
type AudioManager struct {
	settings Settings

	backend backend.Backend
	info    backend.Info

	mixer        *mixer.Mixer
	mainHandle   *track.Handle
	renderer     *renderer.Renderer
	rendererHandle *renderer.Handle

	logger *log.Logger
}

// New negotiates a sample rate with settings.Backend, builds the
// mixer and renderer around it, and starts the backend pumping the
// renderer. It returns a *BackendError if Setup or Start fails.
func New(settings Settings) (*AudioManager, error) {
	if settings.Backend == nil {
		return nil, fmt.Errorf("manager: Settings.Backend is required")
	}
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = 1024
	}

	info, err := settings.Backend.Setup(settings.PreferredSampleRate, settings.PreferredChannels)
	if err != nil {
		return nil, &BackendError{Op: "Setup", Err: err}
	}

	mx, mainHandle := mixer.New(mixer.Settings{
		Main:               settings.mainTrackSettings(),
		SubTrackCapacity:   settings.Capacities.SubTrackCapacity,
		SendCapacity:       settings.Capacities.SendCapacity,
		InternalBufferSize: settings.InternalBufferSize,
	})

	r, rendererHandle := renderer.New(renderer.Settings{
		SampleRate:         info.SampleRate,
		InternalBufferSize: settings.InternalBufferSize,
		ClockCapacity:      settings.Capacities.ClockCapacity,
		ModulatorCapacity:  settings.Capacities.ModulatorCapacity,
		Mixer:              mx,
	})

	if err := settings.Backend.Start(r); err != nil {
		return nil, &BackendError{Op: "Start", Err: err}
	}

	m := &AudioManager{
		settings:       settings,
		backend:        settings.Backend,
		info:           info,
		mixer:          mx,
		mainHandle:     mainHandle,
		renderer:       r,
		rendererHandle: rendererHandle,
		logger:         log.New(os.Stderr, "manager: ", log.LstdFlags),
	}
	m.logger.Printf("started (sample_rate=%v channels=%v buffer=%d)", info.SampleRate, info.Channels, settings.InternalBufferSize)
	return m, nil
}

// Info reports the sample rate and channel count the backend actually
// negotiated at construction.
func (m *AudioManager) Info() backend.Info { return m.info }

// MainTrack returns the control-thread handle for the main mixer
// track, for setting its volume/panning or adding send routes.
func (m *AudioManager) MainTrack() *track.Handle { return m.mainHandle }

// Renderer returns the renderer's control-thread handle, for
// pausing/resuming the entire mix.
func (m *AudioManager) Renderer() *renderer.Handle { return m.rendererHandle }

// Backend returns the backend this manager was constructed with, for
// callers that need backend-specific control beyond the common
// Setup/Start/Stop surface (e.g. type-asserting to *malgodriver.Backend).
func (m *AudioManager) Backend() backend.Backend { return m.backend }

// Close stops the backend, releasing its device if it has one. Safe to
// call more than once.
func (m *AudioManager) Close() error {
	if err := m.backend.Stop(); err != nil {
		return &BackendError{Op: "Stop", Err: err}
	}
	return nil
}

// AddSubTrack creates a mixer sub-track with the given routes to
// existing sends, returning ErrCapacityReached if every sub-track slot
// is occupied.
func (m *AudioManager) AddSubTrack(settings track.TrackSettings) (ids.TrackKey, *track.Handle, error) {
	if settings.SoundCapacity <= 0 {
		settings.SoundCapacity = m.settings.Capacities.SubTrackSoundCapacity
	}
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = m.settings.InternalBufferSize
	}
	key, handle, err := m.mixer.AddSubTrack(settings)
	if err != nil {
		return ids.TrackKey{}, nil, err
	}
	m.logger.Printf("sub-track added: key=%+v label=%s", key, uuid.NewString())
	return key, handle, nil
}

// AddSend creates a mixer send track, returning ErrCapacityReached if
// every send slot is occupied.
func (m *AudioManager) AddSend(settings track.SendTrackSettings) (ids.SendKey, *track.SendTrackHandle, error) {
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = m.settings.InternalBufferSize
	}
	key, handle, err := m.mixer.AddSend(settings)
	if err != nil {
		return ids.SendKey{}, nil, err
	}
	m.logger.Printf("send added: key=%+v label=%s", key, uuid.NewString())
	return key, handle, nil
}

// AddClock creates a clock running at speed, returning
// ErrCapacityReached if every clock slot is occupied.
func (m *AudioManager) AddClock(speed clock.Speed) (ids.ClockKey, *clock.Handle, error) {
	key, err := m.renderer.Clocks().TryReserve()
	if err != nil {
		return ids.ClockKey{}, nil, err
	}
	c, handle := clock.New(speed, m.settings.InternalBufferSize)
	m.renderer.Clocks().Insert(key, c)
	m.logger.Printf("clock added: key=%+v label=%s", key, uuid.NewString())
	return key, handle, nil
}

// AddLfo creates an LFO modulator, returning ErrCapacityReached if
// every modulator slot is occupied.
func (m *AudioManager) AddLfo(settings modulator.LfoSettings) (ids.ModulatorKey, *modulator.LfoHandle, error) {
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = m.settings.InternalBufferSize
	}
	key, err := m.renderer.Modulators().TryReserve()
	if err != nil {
		return ids.ModulatorKey{}, nil, err
	}
	lfo, handle := modulator.NewLfo(settings)
	m.renderer.Modulators().Insert(key, lfo)
	m.logger.Printf("lfo added: key=%+v label=%s", key, uuid.NewString())
	return key, handle, nil
}

// AddTweener creates a plain tweened-scalar modulator, returning
// ErrCapacityReached if every modulator slot is occupied.
func (m *AudioManager) AddTweener(initial float64) (ids.ModulatorKey, *modulator.TweenerHandle, error) {
	key, err := m.renderer.Modulators().TryReserve()
	if err != nil {
		return ids.ModulatorKey{}, nil, err
	}
	t, handle := modulator.NewTweener(initial)
	m.renderer.Modulators().Insert(key, t)
	m.logger.Printf("tweener added: key=%+v label=%s", key, uuid.NewString())
	return key, handle, nil
}

// PlayStatic plays an in-memory sample array on the main track,
// returning a *PlaySoundError wrapping resource.ErrCapacityReached if
// the main track's sound capacity is exhausted.
func (m *AudioManager) PlayStatic(frames []dsp.Frame, sampleRate float64, settings sound.StaticSoundSettings) (*sound.StaticSoundHandle, error) {
	return m.playStatic(m.mixer.Main(), "PlayStatic", frames, sampleRate, settings)
}

// PlayStaticOn plays an in-memory sample array on a previously created
// sub-track. It returns a *PlaySoundError wrapping ErrTrackNotFound if
// target doesn't resolve to a live sub-track, or resource.ErrCapacityReached
// if that sub-track's sound capacity is exhausted.
func (m *AudioManager) PlayStaticOn(target ids.TrackKey, frames []dsp.Frame, sampleRate float64, settings sound.StaticSoundSettings) (*sound.StaticSoundHandle, error) {
	t, ok := m.mixer.SubTrack(target)
	if !ok {
		return nil, &PlaySoundError{Op: "PlayStaticOn", Err: ErrTrackNotFound}
	}
	return m.playStatic(t, "PlayStaticOn", frames, sampleRate, settings)
}

func (m *AudioManager) playStatic(t *track.Track, op string, frames []dsp.Frame, sampleRate float64, settings sound.StaticSoundSettings) (*sound.StaticSoundHandle, error) {
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = m.settings.InternalBufferSize
	}
	key, err := t.Sounds().TryReserve()
	if err != nil {
		return nil, &PlaySoundError{Op: op, Err: err}
	}
	snd, handle := sound.NewStaticSound(frames, sampleRate, settings)
	t.Sounds().Insert(key, snd)
	return handle, nil
}

// PlayStreaming plays a Decoder's output on the main track through a
// background decode worker, returning a *PlaySoundError wrapping
// resource.ErrCapacityReached if the main track's sound capacity is
// exhausted.
func (m *AudioManager) PlayStreaming(decoder sound.Decoder, settings sound.StreamingSoundSettings) (*sound.StreamingSoundHandle, error) {
	return m.playStreaming(m.mixer.Main(), "PlayStreaming", decoder, settings)
}

// PlayStreamingOn plays a Decoder's output on a previously created
// sub-track. It returns a *PlaySoundError wrapping ErrTrackNotFound if
// target doesn't resolve to a live sub-track, or resource.ErrCapacityReached
// if that sub-track's sound capacity is exhausted.
func (m *AudioManager) PlayStreamingOn(target ids.TrackKey, decoder sound.Decoder, settings sound.StreamingSoundSettings) (*sound.StreamingSoundHandle, error) {
	t, ok := m.mixer.SubTrack(target)
	if !ok {
		return nil, &PlaySoundError{Op: "PlayStreamingOn", Err: ErrTrackNotFound}
	}
	return m.playStreaming(t, "PlayStreamingOn", decoder, settings)
}

func (m *AudioManager) playStreaming(t *track.Track, op string, decoder sound.Decoder, settings sound.StreamingSoundSettings) (*sound.StreamingSoundHandle, error) {
	if settings.InternalBufferSize <= 0 {
		settings.InternalBufferSize = m.settings.InternalBufferSize
	}
	if settings.FrameRingCapacity <= 0 {
		settings.FrameRingCapacity = 16384
	}
	key, err := t.Sounds().TryReserve()
	if err != nil {
		return nil, &PlaySoundError{Op: op, Err: err}
	}
	snd, handle := sound.NewStreamingSound(decoder, settings)
	t.Sounds().Insert(key, snd)
	return handle, nil
}
