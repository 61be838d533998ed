package sound

import "github.com/resonant-audio/resound/dsp"

// Decoder is the capability a StreamingSound needs from whatever format
// library actually parses the source file. Decode, Seek, and Reset all
// run on the background decode worker, never on the audio thread, so
// they're free to block or allocate.
type Decoder interface {
	// SampleRate is the decoder's native sample rate, in Hz.
	SampleRate() float64
	// Decode returns the next block of decoded frames. A nil slice with
	// a nil error means the source is exhausted.
	Decode() ([]dsp.Frame, error)
	// Seek repositions the decoder so the next Decode call starts at or
	// after frameIndex, returning the frame index actually landed on.
	Seek(frameIndex int64) (int64, error)
	// Reset rewinds the decoder to the beginning of the source.
	Reset() error
}
