package manager

import (
	"testing"

	"github.com/resonant-audio/resound/backend"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/track"
	"github.com/resonant-audio/resound/tween"
)

func newTestManager(t *testing.T) *AudioManager {
	t.Helper()
	settings := DefaultSettings()
	settings.Backend = backend.NewMock(48000, 2)
	settings.InternalBufferSize = 8
	m, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewNegotiatesBackendAndStarts(t *testing.T) {
	m := newTestManager(t)
	if m.Info().SampleRate != 48000 || m.Info().Channels != 2 {
		t.Fatalf("Info() = %+v, want {48000 2}", m.Info())
	}
}

func TestNewRequiresBackend(t *testing.T) {
	settings := DefaultSettings()
	if _, err := New(settings); err == nil {
		t.Fatalf("expected error for nil Backend")
	}
}

func TestPlayStaticOnMainTrackIsAudible(t *testing.T) {
	m := newTestManager(t)

	frames := make([]dsp.Frame, 16)
	for i := range frames {
		frames[i] = dsp.Frame{Left: 1, Right: 1}
	}
	if _, err := m.PlayStatic(frames, 48000, sound.StaticSoundSettings{
		Volume:  tween.Fixed(dsp.Identity),
		Panning: tween.Fixed(dsp.PanCenter),
	}); err != nil {
		t.Fatalf("PlayStatic: %v", err)
	}

	mb := m.Backend().(*backend.MockBackend)
	scratch := make([]dsp.Frame, 8)
	out := make([]float32, 16)
	mb.Tick(scratch, out)

	if out[0] == 0 {
		t.Fatalf("expected audible output, got silence: %v", out)
	}
}

func TestPlayStaticOnUnknownTrackFails(t *testing.T) {
	m := newTestManager(t)
	frames := []dsp.Frame{{Left: 1, Right: 1}}
	_, err := m.PlayStaticOn(ids.TrackKey{Slot: 9999}, frames, 48000, sound.StaticSoundSettings{})
	if err == nil {
		t.Fatalf("expected error for unknown track")
	}
}

func TestAddSubTrackThenPlayStaticOn(t *testing.T) {
	m := newTestManager(t)
	key, _, err := m.AddSubTrack(track.TrackSettings{
		Volume:  tween.Fixed(dsp.Identity),
		Panning: tween.Fixed(dsp.PanCenter),
	})
	if err != nil {
		t.Fatalf("AddSubTrack: %v", err)
	}

	frames := make([]dsp.Frame, 16)
	for i := range frames {
		frames[i] = dsp.Frame{Left: 1, Right: 1}
	}

	mb := m.Backend().(*backend.MockBackend)
	scratch := make([]dsp.Frame, 8)
	out := make([]float32, 16)
	mb.Tick(scratch, out) // drain the sub-track insertion

	if _, err := m.PlayStaticOn(key, frames, 48000, sound.StaticSoundSettings{
		Volume:  tween.Fixed(dsp.Identity),
		Panning: tween.Fixed(dsp.PanCenter),
	}); err != nil {
		t.Fatalf("PlayStaticOn: %v", err)
	}

	mb.Tick(scratch, out)
	if out[0] == 0 {
		t.Fatalf("expected audible output from sub-track, got silence: %v", out)
	}
}

func TestCapacityReachedOnSends(t *testing.T) {
	settings := DefaultSettings()
	settings.Backend = backend.NewMock(48000, 2)
	settings.InternalBufferSize = 8
	settings.Capacities.SendCapacity = 1
	m, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	if _, _, err := m.AddSend(track.SendTrackSettings{Volume: tween.Fixed(dsp.Identity)}); err != nil {
		t.Fatalf("first AddSend: %v", err)
	}
	if _, _, err := m.AddSend(track.SendTrackSettings{Volume: tween.Fixed(dsp.Identity)}); err != ErrCapacityReached {
		t.Fatalf("second AddSend err = %v, want ErrCapacityReached", err)
	}
}

// TestReleaseSubTrackFreesSlotForNextAdd exercises the capacity test
// scenario in full: with sub_track_capacity=2, two AddSubTrack calls
// succeed and a third hits ErrCapacityReached; releasing one of the
// first two handles and running a single OnStartProcessing pass frees
// its slot, so a fourth AddSubTrack then succeeds.
func TestReleaseSubTrackFreesSlotForNextAdd(t *testing.T) {
	settings := DefaultSettings()
	settings.Backend = backend.NewMock(48000, 2)
	settings.InternalBufferSize = 8
	settings.Capacities.SubTrackCapacity = 2
	m, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	subTrackSettings := track.TrackSettings{
		Volume:  tween.Fixed(dsp.Identity),
		Panning: tween.Fixed(dsp.PanCenter),
	}

	_, firstHandle, err := m.AddSubTrack(subTrackSettings)
	if err != nil {
		t.Fatalf("first AddSubTrack: %v", err)
	}
	if _, _, err := m.AddSubTrack(subTrackSettings); err != nil {
		t.Fatalf("second AddSubTrack: %v", err)
	}
	if _, _, err := m.AddSubTrack(subTrackSettings); err != ErrCapacityReached {
		t.Fatalf("third AddSubTrack err = %v, want ErrCapacityReached", err)
	}

	firstHandle.Release()

	mb := m.Backend().(*backend.MockBackend)
	scratch := make([]dsp.Frame, 8)
	out := make([]float32, 16)
	mb.Tick(scratch, out) // one OnStartProcessing pass evicts the released sub-track

	if _, _, err := m.AddSubTrack(subTrackSettings); err != nil {
		t.Fatalf("AddSubTrack after release err = %v, want nil", err)
	}
}
