package sound

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/internal/ringbuf"
	"github.com/resonant-audio/resound/transport"
	"github.com/resonant-audio/resound/tween"
)

// workerSleep is how long the background decode worker waits before
// rechecking the frame ring after finding it full.
const workerSleep = time.Millisecond

// streamedFrame pairs a decoded frame with the source frame index it
// came from, so the audio thread can feed Resampler4 the same way
// StaticSound does.
type streamedFrame struct {
	frame dsp.Frame
	index int64
}

// StreamingSoundSettings configures a StreamingSound at construction
// time.
type StreamingSoundSettings struct {
	StartTime            tween.StartTime
	StartPositionSeconds float64
	Volume               tween.Value[dsp.Decibels]
	Panning              tween.Value[dsp.Panning]
	PlaybackRate         tween.Value[dsp.PlaybackRate]
	// LoopStartFrame, if non-nil, is the source frame index the decoder
	// seeks back to once it runs out of data. Nil means play once.
	LoopStartFrame     *int64
	OutputDestination  ids.TrackKey
	FadeInTween        *tween.Tween
	InternalBufferSize int
	// FrameRingCapacity bounds how far ahead of playback the background
	// worker may decode. The spec calls for at least 16K frames so a
	// worker hiccup doesn't starve the audio thread.
	FrameRingCapacity int
}

// StreamingSound plays back a Decoder's output through a background
// worker goroutine that owns the decoder exclusively; the audio thread
// only ever touches the frame ring, the error ring, and its own
// transport/resampler state.
type StreamingSound struct {
	sampleRate float64

	frames    *ringbuf.Ring[streamedFrame]
	errors    *ringbuf.Ring[error]
	resampler *transport.Resampler4
	nextIndex int64 // next source frame index we expect to consume
	phase     float64
	transportPlaying bool

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

	shared *streamingSoundShared

	workerSeekWriter *command.Writer[float64]
	workerSeekReader *command.Reader[float64]
	flushingSeek     bool

	stopChan chan struct{}
	wg       sync.WaitGroup

	pauseReader      *command.Reader[tween.Tween]
	resumeReader     *command.Reader[resumeCommand]
	stopReader       *command.Reader[tween.Tween]
	seekReader       *command.Reader[float64]
	setVolumeReader  *command.Reader[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningReader *command.Reader[tween.ValueChangeCommand[dsp.Panning]]
	setRateReader    *command.Reader[tween.ValueChangeCommand[dsp.PlaybackRate]]
}

type streamingSoundShared struct {
	finished atomic.Bool
	stopped  atomic.Bool
}

// NewStreamingSound creates a StreamingSound over decoder, starts its
// background decode worker, and returns the sound plus its
// control-thread Handle.
func NewStreamingSound(decoder Decoder, s StreamingSoundSettings) (*StreamingSound, *StreamingSoundHandle) {
	sampleRate := decoder.SampleRate()
	ringCapacity := s.FrameRingCapacity
	if ringCapacity <= 0 {
		ringCapacity = 16384
	}

	fade := buildFadeParameter(s.FadeInTween)

	pauseWriter, pauseReader := command.NewChannel[tween.Tween]()
	resumeWriter, resumeReader := command.NewChannel[resumeCommand]()
	stopWriter, stopReader := command.NewChannel[tween.Tween]()
	seekWriter, seekReader := command.NewChannel[float64]()
	workerSeekWriter, workerSeekReader := command.NewChannel[float64]()
	volumeWriter, volumeReader := command.NewChannel[tween.ValueChangeCommand[dsp.Decibels]]()
	panningWriter, panningReader := command.NewChannel[tween.ValueChangeCommand[dsp.Panning]]()
	rateWriter, rateReader := command.NewChannel[tween.ValueChangeCommand[dsp.PlaybackRate]]()

	shared := &streamingSoundShared{}
	startFrame := int64(s.StartPositionSeconds * sampleRate)

	snd := &StreamingSound{
		sampleRate:        sampleRate,
		frames:            ringbuf.New[streamedFrame](ringCapacity),
		errors:            ringbuf.New[error](64),
		resampler:         transport.NewResampler4(startFrame),
		nextIndex:         startFrame,
		transportPlaying:  true,
		state:             Playing,
		startTime:         s.StartTime,
		waitingForStart:   true,
		volume:            tween.NewParameter(s.Volume, dsp.Identity, dsp.Decibels.Interpolate),
		panning:           tween.NewParameter(s.Panning, dsp.PanCenter, dsp.Panning.Interpolate),
		playbackRate:      tween.NewParameter(s.PlaybackRate, dsp.PlaybackRate(1), dsp.PlaybackRate.Interpolate),
		fade:              fade,
		volumeBuf:         make([]dsp.Decibels, s.InternalBufferSize),
		panBuf:            make([]dsp.Panning, s.InternalBufferSize),
		rateBuf:           make([]dsp.PlaybackRate, s.InternalBufferSize),
		fadeBuf:           make([]dsp.Decibels, s.InternalBufferSize),
		outputDestination: s.OutputDestination,
		shared:            shared,
		workerSeekWriter:  workerSeekWriter,
		workerSeekReader:  workerSeekReader,
		stopChan:          make(chan struct{}),
		pauseReader:       pauseReader,
		resumeReader:      resumeReader,
		stopReader:        stopReader,
		seekReader:        seekReader,
		setVolumeReader:   volumeReader,
		setPanningReader:  panningReader,
		setRateReader:     rateReader,
	}

	if startFrame > 0 {
		workerSeekWriter.Write(s.StartPositionSeconds)
	}

	snd.wg.Add(1)
	go snd.runWorker(decoder, s.LoopStartFrame)

	handle := &StreamingSoundHandle{
		shared:           shared,
		errors:           snd.errors,
		pauseWriter:      pauseWriter,
		resumeWriter:     resumeWriter,
		stopWriter:       stopWriter,
		seekWriter:       seekWriter,
		setVolumeWriter:  volumeWriter,
		setPanningWriter: panningWriter,
		setRateWriter:    rateWriter,
		stop:             snd.stop,
	}
	return snd, handle
}

func buildFadeParameter(fadeInTween *tween.Tween) *tween.Parameter[dsp.Decibels] {
	if fadeInTween == nil {
		return tween.NewParameter(tween.Fixed(dsp.Identity), dsp.Identity, dsp.Decibels.Interpolate)
	}
	fade := tween.NewParameter(tween.Fixed(dsp.Silence), dsp.Silence, dsp.Decibels.Interpolate)
	fade.Set(tween.Fixed(dsp.Identity), *fadeInTween)
	return fade
}

// runWorker is the background decode loop. It owns decoder exclusively;
// the audio thread never touches it.
func (s *StreamingSound) runWorker(decoder Decoder, loopStartFrame *int64) {
	defer s.wg.Done()

	var pending []dsp.Frame
	var pendingIndex int64
	nextPush := s.nextIndex

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		if seconds, ok := s.workerSeekReader.Read(); ok {
			target := int64(math.Round(seconds * decoder.SampleRate()))
			if err := decoder.Reset(); err != nil {
				s.pushError(err)
			} else if block, index, ok := seekDecoder(decoder, target); ok {
				pending = block
				pendingIndex = index
				nextPush = index
			} else {
				pending = nil
				nextPush = target
			}
		}

		if s.frames.IsFull() {
			time.Sleep(workerSleep)
			continue
		}

		if len(pending) == 0 {
			block, err := decoder.Decode()
			if err != nil {
				s.pushError(err)
				continue
			}
			if block == nil {
				if loopStartFrame == nil {
					s.shared.finished.Store(true)
					return
				}
				if err := decoder.Reset(); err != nil {
					s.pushError(err)
					return
				}
				loopBlock, index, ok := seekDecoder(decoder, *loopStartFrame)
				if !ok {
					s.shared.finished.Store(true)
					return
				}
				pending = loopBlock
				pendingIndex = index
				nextPush = index
				continue
			}
			pending = block
			pendingIndex = nextPush
		}

		f := pending[0]
		pending = pending[1:]
		s.frames.Push(streamedFrame{frame: f, index: pendingIndex})
		pendingIndex++
		nextPush = pendingIndex
	}
}

// seekDecoder first asks decoder.Seek for target and, if that succeeds,
// returns the next decoded block and the position Seek reported.
// Otherwise it skips forward from the decoder's current position (the
// start of the source, once decoder has been Reset) until it reaches
// the block containing target, returning that block sliced to start
// exactly at target.
func seekDecoder(decoder Decoder, target int64) ([]dsp.Frame, int64, bool) {
	actual, err := decoder.Seek(target)
	if err == nil {
		block, err := decoder.Decode()
		if err == nil && block != nil {
			return block, actual, true
		}
	}
	// Fall back to a linear scan from the start if Seek isn't precise
	// or isn't supported for this position.
	skipped := int64(0)
	for {
		block, err := decoder.Decode()
		if err != nil || block == nil {
			return nil, 0, false
		}
		if skipped+int64(len(block)) > target {
			return block[target-skipped:], target, true
		}
		skipped += int64(len(block))
	}
}

func (s *StreamingSound) pushError(err error) {
	s.errors.Push(err)
}

func (s *StreamingSound) stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
}

// OnStartProcessing implements Sound.
func (s *StreamingSound) OnStartProcessing() {
	s.volume.ReadCommand(s.setVolumeReader)
	s.panning.ReadCommand(s.setPanningReader)
	s.playbackRate.ReadCommand(s.setRateReader)

	if seconds, ok := s.seekReader.Read(); ok {
		s.workerSeekWriter.Write(seconds)
		s.flushingSeek = true
		for {
			if _, ok := s.frames.Pop(); !ok {
				break
			}
		}
		target := int64(seconds * s.sampleRate)
		s.resampler = transport.NewResampler4(target)
		s.nextIndex = target
		s.phase = 0
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
func (s *StreamingSound) Process(out []dsp.Frame, dtPerSample float64, inf info.Info) {
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
			if sf, ok := s.frames.Pop(); ok {
				s.resampler.PushFrame(&sf.frame, sf.index)
				s.nextIndex = sf.index + 1
			} else {
				s.resampler.PushFrame(nil, s.nextIndex)
			}
		}
		amplitude := float32(volBuf[i].AsAmplitude() * fadeBuf[i].AsAmplitude())
		out[i] = s.resampler.Get(float32(s.phase)).Panned(float32(panBuf[i])).Scale(amplitude)
	}

	s.advanceLifecycle()
}

func (s *StreamingSound) advanceLifecycle() {
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
	if s.shared.finished.Load() && s.resampler.Empty() && s.frames.IsEmpty() && s.state != Stopping {
		s.state = Stopped
	}
}

// Finished implements Sound.
func (s *StreamingSound) Finished() bool {
	done := s.state == Stopped
	if done {
		s.shared.stopped.Store(true)
	}
	return done
}

// OutputDestination implements Sound.
func (s *StreamingSound) OutputDestination() ids.TrackKey {
	return s.outputDestination
}

// StreamingSoundHandle is the control-thread façade for a
// StreamingSound.
type StreamingSoundHandle struct {
	shared *streamingSoundShared
	errors *ringbuf.Ring[error]

	pauseWriter      *command.Writer[tween.Tween]
	resumeWriter     *command.Writer[resumeCommand]
	stopWriter       *command.Writer[tween.Tween]
	seekWriter       *command.Writer[float64]
	setVolumeWriter  *command.Writer[tween.ValueChangeCommand[dsp.Decibels]]
	setPanningWriter *command.Writer[tween.ValueChangeCommand[dsp.Panning]]
	setRateWriter    *command.Writer[tween.ValueChangeCommand[dsp.PlaybackRate]]

	stop func()
}

// Pause fades to silence over tw, then holds position.
func (h *StreamingSoundHandle) Pause(tw tween.Tween) { h.pauseWriter.Write(tw) }

// Resume fades back in over tw, optionally gated by startTime.
func (h *StreamingSoundHandle) Resume(tw tween.Tween, startTime tween.StartTime) {
	h.resumeWriter.Write(resumeCommand{tween: tw, startTime: startTime})
}

// Stop fades to silence over tw and then finishes the sound for good.
func (h *StreamingSoundHandle) Stop(tw tween.Tween) { h.stopWriter.Write(tw) }

// SeekTo jumps playback to positionSeconds. The background worker
// flushes its queue and reseeks the decoder; audio glitches briefly
// silent until freshly decoded frames arrive.
func (h *StreamingSoundHandle) SeekTo(positionSeconds float64) { h.seekWriter.Write(positionSeconds) }

// SetVolume begins tweening the sound's volume.
func (h *StreamingSoundHandle) SetVolume(target tween.Value[dsp.Decibels], tw tween.Tween) {
	h.setVolumeWriter.Write(tween.ValueChangeCommand[dsp.Decibels]{Target: target, Tween: tw})
}

// SetPanning begins tweening the sound's pan position.
func (h *StreamingSoundHandle) SetPanning(target tween.Value[dsp.Panning], tw tween.Tween) {
	h.setPanningWriter.Write(tween.ValueChangeCommand[dsp.Panning]{Target: target, Tween: tw})
}

// SetPlaybackRate begins tweening the sound's playback rate.
func (h *StreamingSoundHandle) SetPlaybackRate(target tween.Value[dsp.PlaybackRate], tw tween.Tween) {
	h.setRateWriter.Write(tween.ValueChangeCommand[dsp.PlaybackRate]{Target: target, Tween: tw})
}

// PopError returns the next decode error the background worker ran
// into, or (nil, false) if there isn't one.
func (h *StreamingSoundHandle) PopError() (error, bool) { return h.errors.Pop() }

// Finished reports whether the audio thread has marked this sound
// Stopped.
func (h *StreamingSoundHandle) Finished() bool { return h.shared.stopped.Load() }

// Release stops the background worker goroutine. Call once the sound
// is no longer needed; the worker otherwise runs until the decoder is
// exhausted (or forever, if looping).
func (h *StreamingSoundHandle) Release() { h.stop() }
