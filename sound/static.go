package sound

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/transport"
	"github.com/resonant-audio/resound/tween"
)

// StaticSoundSettings configures a StaticSound at construction time.
type StaticSoundSettings struct {
	StartTime            tween.StartTime
	StartPositionSeconds float64
	Volume               tween.Value[dsp.Decibels]
	Panning              tween.Value[dsp.Panning]
	PlaybackRate         tween.Value[dsp.PlaybackRate]
	Reverse              bool
	LoopRegion           *transport.Region
	OutputDestination    ids.TrackKey
	FadeInTween          *tween.Tween
	InternalBufferSize   int
}

// StaticSound plays back an in-memory array of frames. The frame slice
// is never mutated or reallocated during playback, so it may safely be
// shared across multiple StaticSound instances (e.g. the same sound
// effect played many times at once).
type StaticSound struct {
	frames     []dsp.Frame
	sampleRate float64

	transport *transport.Transport
	resampler *transport.Resampler4
	phase     float64

	state           PlaybackState
	startTime       tween.StartTime
	waitingForStart bool

	volume       *tween.Parameter[dsp.Decibels]
	panning      *tween.Parameter[dsp.Panning]
	playbackRate *tween.Parameter[dsp.PlaybackRate]
	fade         *tween.Parameter[dsp.Decibels]

	volumeBuf []dsp.Decibels
	panBuf    []dsp.Panning
	rateBuf   []dsp.PlaybackRate
	fadeBuf   []dsp.Decibels

	outputDestination ids.TrackKey

	shared *staticSoundShared

	pauseReader         *command.Reader[tween.Tween]
	resumeReader        *command.Reader[resumeCommand]
	stopReader          *command.Reader[tween.Tween]
	seekReader          *command.Reader[float64]
	setLoopRegionReader *command.Reader[*transport.Region]
	setVolumeReader     *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningReader    *command.Reader[tween.ValueChangeCommand[dsp.Panning]]
	setRateReader       *command.Reader[tween.ValueChangeCommand[dsp.PlaybackRate]]
}

type resumeCommand struct {
	tween     tween.Tween
	startTime tween.StartTime
}

type staticSoundShared struct {
	finished atomic.Bool
}

// NewStaticSound creates a StaticSound over frames (not copied) and its
// control-thread Handle.
func NewStaticSound(frames []dsp.Frame, sampleRate float64, s StaticSoundSettings) (*StaticSound, *StaticSoundHandle) {
	numFrames := int64(len(frames))
	tr := transport.New(numFrames, s.LoopRegion, s.Reverse)
	if s.StartPositionSeconds > 0 {
		tr.SeekTo(int64(s.StartPositionSeconds * sampleRate))
	}

	var fade *tween.Parameter[dsp.Decibels]
	if s.FadeInTween != nil {
		fade = tween.NewParameter(tween.Fixed(dsp.Silence), dsp.Silence, dsp.Decibels.Interpolate)
		fade.Set(tween.Fixed(dsp.Identity), *s.FadeInTween)
	} else {
		fade = tween.NewParameter(tween.Fixed(dsp.Identity), dsp.Identity, dsp.Decibels.Interpolate)
	}

	pauseWriter, pauseReader := command.NewChannel[tween.Tween]()
	resumeWriter, resumeReader := command.NewChannel[resumeCommand]()
	stopWriter, stopReader := command.NewChannel[tween.Tween]()
	seekWriter, seekReader := command.NewChannel[float64]()
	loopWriter, loopReader := command.NewChannel[*transport.Region]()
	volumeWriter, volumeReader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	panningWriter, panningReader := command.NewChannel[tween.ValueChangeCommand[dsp.Panning]]()
	rateWriter, rateReader := command.NewChannel[tween.ValueChangeCommand[dsp.PlaybackRate]]()

	shared := &staticSoundShared{}

	snd := &StaticSound{
		frames:              frames,
		sampleRate:          sampleRate,
		transport:           tr,
		resampler:           transport.NewResampler4(tr.Position),
		state:               Playing,
		startTime:           s.StartTime,
		waitingForStart:     true,
		volume:              tween.NewParameter(s.Volume, dsp.Identity, dsp.Decibels.Interpolate),
		panning:             tween.NewParameter(s.Panning, dsp.PanCenter, dsp.Panning.Interpolate),
		playbackRate:        tween.NewParameter(s.PlaybackRate, dsp.PlaybackRate(1), dsp.PlaybackRate.Interpolate),
		fade:                fade,
		volumeBuf:           make([]dsp.Decibels, s.InternalBufferSize),
		panBuf:              make([]dsp.Panning, s.InternalBufferSize),
		rateBuf:             make([]dsp.PlaybackRate, s.InternalBufferSize),
		fadeBuf:             make([]dsp.Decibels, s.InternalBufferSize),
		outputDestination:   s.OutputDestination,
		shared:              shared,
		pauseReader:         pauseReader,
		resumeReader:        resumeReader,
		stopReader:          stopReader,
		seekReader:          seekReader,
		setLoopRegionReader: loopReader,
		setVolumeReader:     volumeReader,
		setPanningReader:    panningReader,
		setRateReader:       rateReader,
	}
	handle := &StaticSoundHandle{
		shared:              shared,
		pauseWriter:         pauseWriter,
		resumeWriter:        resumeWriter,
		stopWriter:          stopWriter,
		seekWriter:          seekWriter,
		setLoopRegionWriter: loopWriter,
		setVolumeWriter:     volumeWriter,
		setPanningWriter:    panningWriter,
		setRateWriter:       rateWriter,
	}
	return snd, handle
}

// OnStartProcessing implements Sound: drains every pending command.
func (s *StaticSound) OnStartProcessing() {
	s.volume.ReadCommand(s.setVolumeReader)
	s.panning.ReadCommand(s.setPanningReader)
	s.playbackRate.ReadCommand(s.setRateReader)

	if region, ok := s.setLoopRegionReader.Read(); ok {
		s.transport.SetLoopRegion(region)
	}
	if position, ok := s.seekReader.Read(); ok {
		s.transport.SeekTo(int64(position * s.sampleRate))
	}
	if tw, ok := s.pauseReader.Read(); ok && s.state == Playing {
		s.fade.Set(tween.Fixed(dsp.Silence), tw)
		s.state = Pausing
	}
	if tw, ok := s.stopReader.Read(); ok && s.state != Stopped && s.state != Stopping {
		s.fade.Set(tween.Fixed(dsp.Silence), tw)
		s.state = Stopping
	}
	if cmd, ok := s.resumeReader.Read(); ok && (s.state == Paused || s.state == Pausing) {
		if cmd.startTime != tween.Immediate {
			s.startTime = cmd.startTime
			s.waitingForStart = true
			s.fade.Set(tween.Fixed(dsp.Identity), cmd.tween)
			s.state = WaitingToResume
		} else {
			s.fade.Set(tween.Fixed(dsp.Identity), cmd.tween)
			s.state = Resuming
		}
	}
}

// Process implements Sound.
func (s *StaticSound) Process(out []dsp.Frame, dtPerSample float64, inf info.Info) {
	n := len(out)

	if s.waitingForStart {
		chunkDuration := time.Duration(float64(n) * dtPerSample * float64(time.Second))
		ready, unsatisfiable := s.startTime.Advance(chunkDuration, inf.Clocks)
		if unsatisfiable {
			s.state = Stopped
		}
		if !ready {
			for i := range out {
				out[i] = dsp.Zero
			}
			return
		}
		s.waitingForStart = false
		if s.state == WaitingToResume {
			s.state = Resuming
		}
	}

	volBuf, panBuf, rateBuf, fadeBuf := s.volumeBuf[:n], s.panBuf[:n], s.rateBuf[:n], s.fadeBuf[:n]
	s.volume.UpdateChunk(volBuf, dtPerSample, inf)
	s.panning.UpdateChunk(panBuf, dtPerSample, inf)
	s.playbackRate.UpdateChunk(rateBuf, dtPerSample, inf)
	s.fade.UpdateChunk(fadeBuf, dtPerSample, inf)

	for i := 0; i < n; i++ {
		if s.state == Paused || s.state == WaitingToResume || s.state == Stopped {
			out[i] = dsp.Zero
			continue
		}

		s.phase += rateBuf[i].AsFactor() * dtPerSample * s.sampleRate
		steps := int64(math.Floor(s.phase))
		s.phase -= float64(steps)
		for j := int64(0); j < steps; j++ {
			if s.transport.Playing {
				f := s.frameAt(s.transport.Position)
				s.resampler.PushFrame(&f, s.transport.Position)
				s.transport.Advance()
			} else {
				s.resampler.PushFrame(nil, s.transport.Position)
			}
		}
		amplitude := float32(volBuf[i].AsAmplitude() * fadeBuf[i].AsAmplitude())
		out[i] = s.resampler.Get(float32(s.phase)).Panned(float32(panBuf[i])).Scale(amplitude)
	}

	s.advanceLifecycle()
}

func (s *StaticSound) frameAt(index int64) dsp.Frame {
	if index < 0 || index >= int64(len(s.frames)) {
		return dsp.Zero
	}
	return s.frames[index]
}

func (s *StaticSound) advanceLifecycle() {
	switch s.state {
	case Pausing:
		if s.fade.Settled() {
			s.state = Paused
		}
	case Stopping:
		if s.fade.Settled() {
			s.state = Stopped
		}
	case Resuming:
		if s.fade.Settled() {
			s.state = Playing
		}
	}
	if !s.transport.Playing && s.resampler.Empty() && s.state != Stopping {
		s.state = Stopped
	}
}

// Finished implements Sound.
func (s *StaticSound) Finished() bool {
	done := s.state == Stopped
	if done {
		s.shared.finished.Store(true)
	}
	return done
}

// OutputDestination implements Sound.
func (s *StaticSound) OutputDestination() ids.TrackKey {
	return s.outputDestination
}

// StaticSoundHandle is the control-thread façade for a StaticSound.
type StaticSoundHandle struct {
	shared *staticSoundShared

	pauseWriter         *command.Writer[tween.Tween]
	resumeWriter        *command.Writer[resumeCommand]
	stopWriter          *command.Writer[tween.Tween]
	seekWriter          *command.Writer[float64]
	setLoopRegionWriter *command.Writer[*transport.Region]
	setVolumeWriter     *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningWriter    *command.Writer[tween.ValueChangeCommand[dsp.Panning]]
	setRateWriter       *command.Writer[tween.ValueChangeCommand[dsp.PlaybackRate]]
}

// Pause fades to silence over tw, then holds position.
func (h *StaticSoundHandle) Pause(tw tween.Tween) { h.pauseWriter.Write(tw) }

// Resume fades back in over tw, optionally gated by startTime (pass
// tween.Immediate to resume right away).
func (h *StaticSoundHandle) Resume(tw tween.Tween, startTime tween.StartTime) {
	h.resumeWriter.Write(resumeCommand{tween: tw, startTime: startTime})
}

// Stop fades to silence over tw and then finishes the sound for good.
func (h *StaticSoundHandle) Stop(tw tween.Tween) { h.stopWriter.Write(tw) }

// SeekTo jumps playback to positionSeconds.
func (h *StaticSoundHandle) SeekTo(positionSeconds float64) { h.seekWriter.Write(positionSeconds) }

// SetLoopRegion replaces the active loop region; nil disables looping.
func (h *StaticSoundHandle) SetLoopRegion(region *transport.Region) {
	h.setLoopRegionWriter.Write(region)
}

// SetVolume begins tweening the sound's volume.
func (h *StaticSoundHandle) SetVolume(target tween.Value[dsp.Decibels], tw tween.Tween) {
	h.setVolumeWriter.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
}

// SetPanning begins tweening the sound's pan position.
func (h *StaticSoundHandle) SetPanning(target tween.Value[dsp.Panning], tw tween.Tween) {
	h.setPanningWriter.Write(tween.ValueChangeCommand[dsp.Panning]{Target: target, Tween: tw})
}

// SetPlaybackRate begins tweening the sound's playback rate.
func (h *StaticSoundHandle) SetPlaybackRate(target tween.Value[dsp.PlaybackRate], tw tween.Tween) {
	h.setRateWriter.Write(tween.ValueChangeCommand[dsp.PlaybackRate]{Target: target, Tween: tw})
}

// Finished reports whether the audio thread has marked this sound
// Stopped.
func (h *StaticSoundHandle) Finished() bool { return h.shared.finished.Load() }
