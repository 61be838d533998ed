package transport

import "github.com/resonant-audio/resound/dsp"

// Resampler4 reconstructs a continuously-variable-rate signal from the
// last 4 frames pushed to it, using 4-point Hermite interpolation. It
// carries no notion of playback direction or looping; transport.Advance
// tells the caller when to push the next frame.
type Resampler4 struct {
	frames         [4]recentFrame
	timeUntilEmpty int
}

type recentFrame struct {
	frame      dsp.Frame
	frameIndex int64
}

// NewResampler4 creates a resampler with all 4 slots primed to silence
// at startingFrameIndex, so Get returns silence until real frames have
// been pushed.
func NewResampler4(startingFrameIndex int64) *Resampler4 {
	r := &Resampler4{}
	for i := range r.frames {
		r.frames[i] = recentFrame{frame: dsp.Zero, frameIndex: startingFrameIndex}
	}
	return r
}

// PushFrame shifts in a new frame at the newest slot. frame is nil when
// the source has nothing left at sampleIndex (e.g. past the end of a
// non-looping sound); timeUntilEmpty counts down in that case and Empty
// reports true once it reaches zero, meaning all 4 slots are now stale
// silence.
func (r *Resampler4) PushFrame(frame *dsp.Frame, sampleIndex int64) {
	if frame != nil {
		r.timeUntilEmpty = 4
	} else if r.timeUntilEmpty > 0 {
		r.timeUntilEmpty--
	}
	f := dsp.Zero
	if frame != nil {
		f = *frame
	}
	copy(r.frames[0:3], r.frames[1:4])
	r.frames[3] = recentFrame{frame: f, frameIndex: sampleIndex}
}

// Get interpolates the currently-audible frame at fractionalPosition in
// [0, 1) between the two center slots.
func (r *Resampler4) Get(fractionalPosition float32) dsp.Frame {
	return dsp.Interpolate(r.frames[0].frame, r.frames[1].frame, r.frames[2].frame, r.frames[3].frame, fractionalPosition)
}

// CurrentFrameIndex is the source-sound index of the frame the listener
// is currently hearing, not the most recently pushed one.
func (r *Resampler4) CurrentFrameIndex() int64 {
	return r.frames[1].frameIndex
}

// Empty reports whether every slot has aged out to silence.
func (r *Resampler4) Empty() bool {
	return r.timeUntilEmpty == 0
}
