package sound

import (
	"testing"
	"time"

	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/transport"
	"github.com/resonant-audio/resound/tween"
)

func sineFrames(n int, sampleRate float64) []dsp.Frame {
	frames := make([]dsp.Frame, n)
	for i := range frames {
		frames[i] = dsp.Frame{Left: float32(i) / float32(sampleRate), Right: float32(i) / float32(sampleRate)}
	}
	return frames
}

func newTestStaticSound(t *testing.T, frames []dsp.Frame, sampleRate float64, s StaticSoundSettings) (*StaticSound, *StaticSoundHandle) {
	t.Helper()
	if s.InternalBufferSize == 0 {
		s.InternalBufferSize = 64
	}
	return NewStaticSound(frames, sampleRate, s)
}

func TestStaticSoundPlaysForwardAndFinishes(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(50, sampleRate)
	snd, _ := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime:    tween.Immediate,
		Volume:       tween.Fixed(dsp.Identity),
		Panning:      tween.Fixed(dsp.PanCenter),
		PlaybackRate: tween.Fixed(dsp.PlaybackRate(1)),
	})

	dt := 1.0 / sampleRate
	out := make([]dsp.Frame, 10)
	finished := false
	for i := 0; i < 30 && !finished; i++ {
		snd.OnStartProcessing()
		snd.Process(out, dt, info.EmptyInfo)
		finished = snd.Finished()
	}
	if !finished {
		t.Fatalf("expected a 50-frame sound played at 10 frames/chunk to finish within 30 chunks")
	}
}

func TestStaticSoundLoopsWithinRegion(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(50, sampleRate)
	snd, _ := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime:  tween.Immediate,
		Volume:     tween.Fixed(dsp.Identity),
		Panning:    tween.Fixed(dsp.PanCenter),
		LoopRegion: &transport.Region{Start: 10, End: 40},
	})

	dt := 1.0 / sampleRate
	out := make([]dsp.Frame, 10)
	for i := 0; i < 200; i++ {
		snd.OnStartProcessing()
		snd.Process(out, dt, info.EmptyInfo)
		if snd.Finished() {
			t.Fatalf("a looping sound should never finish, but it did after %d chunks", i)
		}
	}
}

func TestStaticSoundDelayedStartWritesSilence(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(50, sampleRate)
	// give every frame a nonzero amplitude so silence is distinguishable
	for i := range frames {
		frames[i] = dsp.Frame{Left: 1, Right: 1}
	}
	snd, _ := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime: tween.Delayed(100 * time.Millisecond),
		Volume:    tween.Fixed(dsp.Identity),
		Panning:   tween.Fixed(dsp.PanCenter),
	})

	dt := 1.0 / sampleRate
	out := make([]dsp.Frame, 5) // 50ms chunk, still within the 100ms delay
	snd.OnStartProcessing()
	snd.Process(out, dt, info.EmptyInfo)
	for i, f := range out {
		if f != dsp.Zero {
			t.Fatalf("out[%d] = %+v during the gated delay, want silence", i, f)
		}
	}
}

func TestStaticSoundPauseFadesToSilenceThenHoldsPosition(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(50, sampleRate)
	for i := range frames {
		frames[i] = dsp.Frame{Left: 1, Right: 1}
	}
	snd, handle := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime: tween.Immediate,
		Volume:    tween.Fixed(dsp.Identity),
		Panning:   tween.Fixed(dsp.PanCenter),
	})

	dt := 1.0 / sampleRate
	out := make([]dsp.Frame, 5)

	// let it play a little first so pausing has an audible effect to cut off
	snd.OnStartProcessing()
	snd.Process(out, dt, info.EmptyInfo)

	handle.Pause(tween.Tween{StartTime: tween.Immediate, Duration: 0, Easing: tween.LinearEasing})
	for i := 0; i < 3; i++ {
		snd.OnStartProcessing()
		snd.Process(out, dt, info.EmptyInfo)
	}
	if snd.state != Paused {
		t.Fatalf("state = %v, want Paused after a zero-duration pause fade settles", snd.state)
	}
	for _, f := range out {
		if f != dsp.Zero {
			t.Fatalf("out = %+v while paused, want silence", f)
		}
	}
}

// fakeClockProvider reports a fixed clock state for every lookup,
// standing in for a render chunk's info.ClockInfoProvider snapshot.
type fakeClockProvider struct {
	ticking bool
	ticks   uint64
}

func (f fakeClockProvider) ClockInfo(ids.ClockKey) (info.ClockInfo, bool) {
	return info.ClockInfo{Ticking: f.ticking, Ticks: f.ticks}, true
}

// TestStaticSoundClockGatedStartResolvesAtChunkGranularity pins the
// current, documented behavior of a ClockTime-gated start: StartTime is
// only checked once at the top of Process, against that chunk's clock
// snapshot, so once a tick has occurred anywhere within a chunk the
// sound starts from that chunk's very first sample rather than the
// sample the tick actually lands on. If per-sample tick-boundary
// resolution is ever wired in (see clock.Clock.UpdateChunk), this test
// should be replaced with one asserting the gated start lands exactly
// on the tick sample instead.
func TestStaticSoundClockGatedStartResolvesAtChunkGranularity(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(50, sampleRate)
	for i := range frames {
		frames[i] = dsp.Frame{Left: 1, Right: 1}
	}
	clockKey := ids.ClockKey{Slot: 1}
	snd, _ := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime: tween.AtClockTime(clockKey, 1),
		Volume:    tween.Fixed(dsp.Identity),
		Panning:   tween.Fixed(dsp.PanCenter),
	})

	dt := 1.0 / sampleRate
	out := make([]dsp.Frame, 5)

	notYet := info.Info{Clocks: fakeClockProvider{ticking: true, ticks: 0}, Modulators: info.EmptyInfo.Modulators}
	snd.OnStartProcessing()
	snd.Process(out, dt, notYet)
	for i, f := range out {
		if f != dsp.Zero {
			t.Fatalf("out[%d] = %+v before the gating clock reaches tick 1, want silence", i, f)
		}
	}

	// The clock ticks to 1 somewhere during the second chunk's real
	// time window, but Process only consults the snapshot once, at the
	// top of the call; every sample in this chunk plays, including the
	// ones that precede the tick in real time.
	ready := info.Info{Clocks: fakeClockProvider{ticking: true, ticks: 1}, Modulators: info.EmptyInfo.Modulators}
	snd.OnStartProcessing()
	snd.Process(out, dt, ready)
	for i, f := range out {
		if f == dsp.Zero {
			t.Fatalf("out[%d] = %+v once the chunk's clock snapshot reports tick 1, want audible output from sample 0", i, f)
		}
	}
}

func TestStaticSoundOutputDestination(t *testing.T) {
	const sampleRate = 100.0
	frames := sineFrames(10, sampleRate)
	dest := ids.TrackKey{}
	snd, _ := newTestStaticSound(t, frames, sampleRate, StaticSoundSettings{
		StartTime:         tween.Immediate,
		Volume:            tween.Fixed(dsp.Identity),
		Panning:           tween.Fixed(dsp.PanCenter),
		OutputDestination: dest,
	})
	if snd.OutputDestination() != dest {
		t.Fatalf("OutputDestination() = %v, want %v", snd.OutputDestination(), dest)
	}
}
