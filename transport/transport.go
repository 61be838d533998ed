// Package transport tracks playback position through a sound: where it
// is, whether it's within a loop region, which direction it's advancing,
// and whether it has finished. It owns no audio data of its own.
package transport

// Region marks a loop's start and end frame, in frames. End is
// exclusive.
type Region struct {
	Start int64
	End   int64
}

// Transport tracks a single playback cursor through a sound of
// NumFrames frames.
type Transport struct {
	NumFrames  int64
	Position   int64
	LoopRegion *Region
	Reverse    bool
	Playing    bool
}

// New creates a Transport positioned at the start of the sound (or the
// last frame, if reverse), with playback already started.
func New(numFrames int64, loopRegion *Region, reverse bool) *Transport {
	position := int64(0)
	if reverse {
		position = numFrames - 1
	}
	return &Transport{
		NumFrames:  numFrames,
		Position:   position,
		LoopRegion: loopRegion,
		Reverse:    reverse,
		Playing:    true,
	}
}

// SetLoopRegion replaces the active loop region. A nil region disables
// looping; positions already past the sound's end remain stopped.
func (t *Transport) SetLoopRegion(loopRegion *Region) {
	t.LoopRegion = loopRegion
}

// IncrementPosition advances the cursor by one frame, wrapping it back
// into the loop region if one is set, and stopping playback once the
// cursor reaches the end of the sound.
func (t *Transport) IncrementPosition() {
	t.Position++
	if t.LoopRegion != nil {
		span := t.LoopRegion.End - t.LoopRegion.Start
		for t.Position >= t.LoopRegion.End {
			t.Position -= span
		}
	}
	if t.Position >= t.NumFrames {
		t.Playing = false
	}
}

// DecrementPosition is IncrementPosition's mirror image for reverse
// playback.
func (t *Transport) DecrementPosition() {
	t.Position--
	if t.LoopRegion != nil {
		span := t.LoopRegion.End - t.LoopRegion.Start
		for t.Position < t.LoopRegion.Start {
			t.Position += span
		}
	}
	if t.Position < 0 {
		t.Playing = false
	}
}

// Advance moves the cursor by one frame in whichever direction Reverse
// selects.
func (t *Transport) Advance() {
	if t.Reverse {
		t.DecrementPosition()
	} else {
		t.IncrementPosition()
	}
}

// SeekTo jumps the cursor directly to position, wrapping it into the
// loop region (in the direction implied by whether position lies ahead
// of or behind the current one) the same way repeated
// Increment/DecrementPosition calls would have.
func (t *Transport) SeekTo(position int64) {
	if t.LoopRegion != nil {
		span := t.LoopRegion.End - t.LoopRegion.Start
		if position > t.Position {
			for position >= t.LoopRegion.End {
				position -= span
			}
		} else {
			for position < t.LoopRegion.Start {
				position += span
			}
		}
	}
	t.Position = position
	if t.Position < 0 || t.Position >= t.NumFrames {
		t.Playing = false
	}
}
