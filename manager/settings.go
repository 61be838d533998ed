package manager

import (
	"github.com/resonant-audio/resound/backend"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/track"
	"github.com/resonant-audio/resound/tween"
)

// Capacities bounds how many of each resource kind an AudioManager can
// hold at once. Every bound is enforced up front by the resource
// package's fixed-size arenas: there's no growable fallback, so a
// caller that wants more must ask for more here.
type Capacities struct {
	// SubTrackCapacity bounds the number of mixer sub-tracks.
	SubTrackCapacity int
	// SendCapacity bounds the number of mixer send tracks.
	SendCapacity int
	// ClockCapacity bounds the number of clocks.
	ClockCapacity int
	// ModulatorCapacity bounds the number of modulators.
	ModulatorCapacity int
	// MainTrackSoundCapacity bounds concurrently playing sounds on the
	// main track.
	MainTrackSoundCapacity int
	// SubTrackSoundCapacity bounds concurrently playing sounds on each
	// sub-track created after this AudioManager exists.
	SubTrackSoundCapacity int
}

// DefaultCapacities mirrors the teacher's sensible-defaults-in-a-
// constructor idiom and the ported engine's own defaults: generous
// enough for a typical application, far short of the uint32 range the
// arena's Slot field could address.
func DefaultCapacities() Capacities {
	return Capacities{
		SubTrackCapacity:       128,
		SendCapacity:           16,
		ClockCapacity:          8,
		ModulatorCapacity:      16,
		MainTrackSoundCapacity: 128,
		SubTrackSoundCapacity:  32,
	}
}

// Settings configures an AudioManager at construction time. It is the
// library's entire configuration surface: resound has no CLI flags of
// its own, so a host application (like cmd/resound-demo) is expected
// to either fill this in directly or load it from YAML via
// manager/settingsfile.
type Settings struct {
	// Backend drives the renderer from whatever produces audio
	// callbacks: a real device (backend/malgodriver) or backend.MockBackend
	// for tests and deterministic example hosts.
	Backend backend.Backend
	// PreferredSampleRate is passed to Backend.Setup; 0 lets the
	// backend pick.
	PreferredSampleRate float64
	// PreferredChannels is passed to Backend.Setup; 0 lets the backend
	// pick.
	PreferredChannels int
	// InternalBufferSize bounds the chunk size the renderer, mixer, and
	// every track/sound process at once, regardless of how large a
	// buffer the backend's callback actually hands over.
	InternalBufferSize int
	// Capacities bounds every resource kind's arena size.
	Capacities Capacities
	// MainTrackVolume and MainTrackPanning seed the main track's
	// initial volume/panning.
	MainTrackVolume  tween.Value[dsp.Decibels]
	MainTrackPanning tween.Value[dsp.Panning]
}

// DefaultSettings returns Settings with every capacity defaulted, an
// internal buffer size of 1024 frames (a conservative ~21ms at 48kHz,
// matching the teacher's 20ms malgo period default), and main track
// volume/panning left at unity/center. Backend is left nil: the caller
// must always supply one explicitly, since defaulting silently to a
// real device would be surprising in a library.
func DefaultSettings() Settings {
	return Settings{
		InternalBufferSize: 1024,
		Capacities:         DefaultCapacities(),
		MainTrackVolume:    tween.Fixed(dsp.Identity),
		MainTrackPanning:   tween.Fixed(dsp.PanCenter),
	}
}

func (s Settings) mainTrackSettings() track.TrackSettings {
	return track.TrackSettings{
		Volume:             s.MainTrackVolume,
		Panning:            s.MainTrackPanning,
		SoundCapacity:      s.Capacities.MainTrackSoundCapacity,
		InternalBufferSize: s.InternalBufferSize,
	}
}
