package renderer

import (
	"testing"

	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/effect"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/mixer"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/track"
	"github.com/resonant-audio/resound/tween"
)

// recordingEffect records every OnChangeSampleRate call and the
// dtPerSample each Process call observes, so a test can pin how many
// times a sample-rate change propagates and what rate the next chunk
// actually renders at.
type recordingEffect struct {
	sampleRateChanges int
	lastSampleRate    float64
	dtPerSample       []float64
}

func (e *recordingEffect) Init(sampleRate float64, internalBufferSize int) {}
func (e *recordingEffect) OnChangeSampleRate(sampleRate float64) {
	e.sampleRateChanges++
	e.lastSampleRate = sampleRate
}
func (e *recordingEffect) OnStartProcessing() {}
func (e *recordingEffect) Process(buf []dsp.Frame, dtPerSample float64, inf info.Info) {
	e.dtPerSample = append(e.dtPerSample, dtPerSample)
}

type constantSound struct{ frame dsp.Frame }

func (c *constantSound) OnStartProcessing() {}
func (c *constantSound) Process(out []dsp.Frame, dtPerSample float64, inf info.Info) {
	for i := range out {
		out[i] = c.frame
	}
}
func (c *constantSound) Finished() bool                  { return false }
func (c *constantSound) OutputDestination() ids.TrackKey { return ids.TrackKey{} }

func newRendererWithConstantSound(t *testing.T, frame dsp.Frame) (*Renderer, *Handle) {
	t.Helper()
	mx, _ := mixer.New(mixer.Settings{
		Main: track.TrackSettings{
			Volume:             tween.Fixed(dsp.Identity),
			Panning:            tween.Fixed(dsp.PanCenter),
			SoundCapacity:      4,
			InternalBufferSize: 16,
		},
		SubTrackCapacity:   2,
		SendCapacity:       2,
		InternalBufferSize: 16,
	})

	key, err := mx.Main().Sounds().TryReserve()
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	var s sound.Sound = &constantSound{frame: frame}
	mx.Main().Sounds().Insert(key, s)

	r, handle := New(Settings{
		SampleRate:         48000,
		InternalBufferSize: 16,
		ClockCapacity:      2,
		ModulatorCapacity:  2,
		Mixer:              mx,
	})
	r.OnStartProcessing()
	return r, handle
}

func TestRendererMixesConstantSoundAtUnitGain(t *testing.T) {
	r, _ := newRendererWithConstantSound(t, dsp.Frame{Left: 1, Right: 1})

	out := make([]dsp.Frame, 40) // exercises a chunk boundary at 16
	r.Process(out)
	for i, f := range out {
		if f.Left != 1 || f.Right != 1 {
			t.Fatalf("out[%d] = %+v, want unit amplitude", i, f)
		}
	}
}

func TestRendererPauseFadesToSilence(t *testing.T) {
	r, handle := newRendererWithConstantSound(t, dsp.Frame{Left: 1, Right: 1})

	handle.Pause(tween.Tween{StartTime: tween.Immediate, Duration: 0, Easing: tween.LinearEasing})
	r.OnStartProcessing()

	out := make([]dsp.Frame, 8)
	r.Process(out)
	for i, f := range out {
		if f != dsp.Zero {
			t.Fatalf("out[%d] = %+v after a zero-duration pause, want silence", i, f)
		}
	}
	if !handle.Paused() {
		t.Fatalf("Paused() = false after a fully-settled pause fade")
	}
}

func TestRendererResumeFadesBackIn(t *testing.T) {
	r, handle := newRendererWithConstantSound(t, dsp.Frame{Left: 1, Right: 1})

	handle.Pause(tween.Tween{StartTime: tween.Immediate, Duration: 0, Easing: tween.LinearEasing})
	r.OnStartProcessing()
	r.Process(make([]dsp.Frame, 8))
	if !handle.Paused() {
		t.Fatalf("expected Paused() true after pausing")
	}

	handle.Resume(tween.Tween{StartTime: tween.Immediate, Duration: 0, Easing: tween.LinearEasing})
	r.OnStartProcessing()

	out := make([]dsp.Frame, 8)
	r.Process(out)
	for i, f := range out {
		if f.Left != 1 || f.Right != 1 {
			t.Fatalf("out[%d] = %+v after resuming, want unit amplitude", i, f)
		}
	}
	if handle.Paused() {
		t.Fatalf("Paused() = true after resuming")
	}
}

func TestRendererProcessInterleavedAveragesMono(t *testing.T) {
	r, _ := newRendererWithConstantSound(t, dsp.Frame{Left: 1, Right: -1})

	scratch := make([]dsp.Frame, 4)
	out := make([]float32, 4)
	r.ProcessInterleaved(scratch, out, 1)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0 (average of +1/-1)", i, v)
		}
	}
}

// TestRendererOnChangeSampleRate exercises the sample-rate-change
// propagation chain end to end: renderer -> mixer -> main track ->
// effect. Processing at 100Hz, changing to 200Hz, then processing
// again must call the effect's OnChangeSampleRate exactly once and
// the second chunk's per-sample dt must reflect the new rate.
func TestRendererOnChangeSampleRate(t *testing.T) {
	mx, _ := mixer.New(mixer.Settings{
		Main: track.TrackSettings{
			Volume:             tween.Fixed(dsp.Identity),
			Panning:            tween.Fixed(dsp.PanCenter),
			SoundCapacity:      4,
			InternalBufferSize: 16,
		},
		SubTrackCapacity:   2,
		SendCapacity:       2,
		InternalBufferSize: 16,
	})

	rec := &recordingEffect{}
	var e effect.Effect = rec
	mx.Main().AddEffect(e, 100)

	r, _ := New(Settings{
		SampleRate:         100,
		InternalBufferSize: 16,
		ClockCapacity:      2,
		ModulatorCapacity:  2,
		Mixer:              mx,
	})
	r.OnStartProcessing()
	r.Process(make([]dsp.Frame, 8))

	if got := len(rec.dtPerSample); got == 0 {
		t.Fatalf("effect saw no Process calls before the sample-rate change")
	}
	for _, dt := range rec.dtPerSample {
		if dt != 1.0/100 {
			t.Fatalf("dt before sample-rate change = %v, want %v", dt, 1.0/100)
		}
	}
	rec.dtPerSample = nil

	r.OnChangeSampleRate(200)
	if rec.sampleRateChanges != 1 {
		t.Fatalf("sampleRateChanges = %d, want 1 after a single OnChangeSampleRate call", rec.sampleRateChanges)
	}
	if rec.lastSampleRate != 200 {
		t.Fatalf("lastSampleRate = %v, want 200", rec.lastSampleRate)
	}

	r.OnStartProcessing()
	r.Process(make([]dsp.Frame, 8))
	if len(rec.dtPerSample) == 0 {
		t.Fatalf("effect saw no Process calls after the sample-rate change")
	}
	for _, dt := range rec.dtPerSample {
		if dt != 1.0/200 {
			t.Fatalf("dt after sample-rate change = %v, want %v (1/200)", dt, 1.0/200)
		}
	}
	if rec.sampleRateChanges != 1 {
		t.Fatalf("sampleRateChanges = %d after a second render chunk, want still 1", rec.sampleRateChanges)
	}
}

func TestRendererProcessInterleavedStereo(t *testing.T) {
	r, _ := newRendererWithConstantSound(t, dsp.Frame{Left: 1, Right: -1})

	scratch := make([]dsp.Frame, 4)
	out := make([]float32, 8)
	r.ProcessInterleaved(scratch, out, 2)
	for i := 0; i < 4; i++ {
		if out[2*i] != 1 || out[2*i+1] != -1 {
			t.Fatalf("frame %d = (%v, %v), want (1, -1)", i, out[2*i], out[2*i+1])
		}
	}
}
