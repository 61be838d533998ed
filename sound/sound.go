// Package sound implements the playable-instance layer: a Sound is
// whatever a track's resource storage holds one of per currently
// playing voice, rendering itself into a chunk-sized Frame buffer each
// render chunk. StaticSound plays from an in-memory sample array;
// StreamingSound plays from a background-decoded frame ring with the
// same transport and resampling machinery.
package sound

import (
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
)

// Sound is anything a track can mix in. Process must never allocate or
// block: it runs on the audio thread.
type Sound interface {
	OnStartProcessing()
	Process(out []dsp.Frame, dtPerSample float64, inf info.Info)
	Finished() bool
	OutputDestination() ids.TrackKey
}

// PlaybackState is the lifecycle a playing sound moves through. Pause
// and stop both fade out first so neither ever clips the waveform; a
// paused sound whose resume is itself gated by a StartTime sits in
// WaitingToResume until that gate opens.
type PlaybackState int

const (
	Playing PlaybackState = iota
	Pausing
	Paused
	WaitingToResume
	Resuming
	Stopping
	Stopped
)
