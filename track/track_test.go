package track

import (
	"testing"

	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/tween"
)

// constantSound is a fake sound.Sound that writes a fixed frame every
// sample until told to finish.
type constantSound struct {
	frame    dsp.Frame
	finished bool
}

func (c *constantSound) OnStartProcessing() {}
func (c *constantSound) Process(out []dsp.Frame, dtPerSample float64, inf info.Info) {
	for i := range out {
		out[i] = c.frame
	}
}
func (c *constantSound) Finished() bool                  { return c.finished }
func (c *constantSound) OutputDestination() ids.TrackKey { return ids.TrackKey{} }

func installSound(t *testing.T, trk *Track, s *constantSound) {
	t.Helper()
	key, err := trk.Sounds().TryReserve()
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	var asSound sound.Sound = s
	trk.Sounds().Insert(key, asSound)
	trk.OnStartProcessing()
}

func TestTrackSumsSoundsAndAppliesVolume(t *testing.T) {
	trk, _ := New(TrackSettings{
		Volume:             tween.Fixed(dsp.Decibels(-6)),
		Panning:            tween.Fixed(dsp.PanCenter),
		SoundCapacity:      4,
		InternalBufferSize: 16,
	})
	installSound(t, trk, &constantSound{frame: dsp.Frame{Left: 1, Right: 1}})

	trk.ResetInput(8)
	trk.Process(1.0/48000, info.EmptyInfo)

	want := float32(dsp.Decibels(-6).AsAmplitude())
	for i, f := range trk.Output() {
		if f.Left != want || f.Right != want {
			t.Fatalf("Output()[%d] = %+v, want amplitude %v", i, f, want)
		}
	}
}

func TestTrackRouteScalesIndependentlyOfMainOutput(t *testing.T) {
	sendKey := ids.SendKey{Slot: 1}
	trk, handle := New(TrackSettings{
		Volume:  tween.Fixed(dsp.Identity),
		Panning: tween.Fixed(dsp.PanCenter),
		Routes: map[ids.SendKey]tween.Value[dsp.Decibels]{
			sendKey: tween.Fixed(dsp.Decibels(-6)),
		},
		SoundCapacity:      4,
		InternalBufferSize: 16,
	})
	installSound(t, trk, &constantSound{frame: dsp.Frame{Left: 1, Right: 1}})

	trk.ResetInput(8)
	trk.Process(1.0/48000, info.EmptyInfo)

	route, ok := trk.Routes()[sendKey]
	if !ok {
		t.Fatalf("expected route to %v to exist", sendKey)
	}
	volBuf := make([]dsp.Decibels, 8)
	route.UpdateChunk(volBuf, 1.0/48000, info.EmptyInfo)
	for _, v := range volBuf {
		if v != dsp.Decibels(-6) {
			t.Fatalf("route volume = %v, want -6dB", v)
		}
	}

	// the track's own output is unaffected by the route's volume
	for _, f := range trk.Output() {
		if f.Left != 1 {
			t.Fatalf("Output() should stay at unit volume regardless of route scaling, got %+v", f)
		}
	}

	if !handle.SetRouteVolume(sendKey, tween.Fixed(dsp.Silence), tween.DefaultTween) {
		t.Fatalf("SetRouteVolume should succeed for an existing route")
	}
	if handle.SetRouteVolume(ids.SendKey{Slot: 99}, tween.Fixed(dsp.Silence), tween.DefaultTween) {
		t.Fatalf("SetRouteVolume should fail for a route that was never configured")
	}
}

func TestTrackEvictsFinishedSounds(t *testing.T) {
	trk, _ := New(TrackSettings{
		Volume:             tween.Fixed(dsp.Identity),
		Panning:            tween.Fixed(dsp.PanCenter),
		SoundCapacity:      2,
		InternalBufferSize: 8,
	})
	s := &constantSound{frame: dsp.Frame{Left: 1, Right: 1}}
	installSound(t, trk, s)
	if trk.Sounds().Len() != 1 {
		t.Fatalf("Len() = %d, want 1", trk.Sounds().Len())
	}

	s.finished = true
	trk.OnStartProcessing()
	if trk.Sounds().Len() != 0 {
		t.Fatalf("Len() = %d after the sound finished, want 0", trk.Sounds().Len())
	}
}

func TestTrackShouldBeRemovedAfterHandleRelease(t *testing.T) {
	trk, handle := New(TrackSettings{
		Volume:             tween.Fixed(dsp.Identity),
		Panning:            tween.Fixed(dsp.PanCenter),
		SoundCapacity:      2,
		InternalBufferSize: 8,
	})
	if trk.ShouldBeRemoved() {
		t.Fatalf("ShouldBeRemoved() = true before Release")
	}

	handle.Release()

	if !trk.ShouldBeRemoved() {
		t.Fatalf("ShouldBeRemoved() = false after Release")
	}
}
