package modulator

import "math"

// Waveform is an oscillation pattern for an Lfo.
type Waveform struct {
	kind  waveformKind
	width float64 // only meaningful for Pulse
}

type waveformKind int

const (
	waveformSine waveformKind = iota
	waveformTriangle
	waveformSawtooth
	waveformPulse
)

// Sine oscillates smoothly between -1 and 1.
var Sine = Waveform{kind: waveformSine}

// Triangle oscillates at constant speed between -1 and 1.
var Triangle = Waveform{kind: waveformTriangle}

// Sawtooth ramps from -1 to 1, then jumps back.
var Sawtooth = Waveform{kind: waveformSawtooth}

// Pulse jumps between 1 and -1, spending width of its period at 1 (width
// in [0, 1]).
func Pulse(width float64) Waveform {
	return Waveform{kind: waveformPulse, width: width}
}

// value evaluates the waveform at phase in [0, 1).
func (w Waveform) value(phase float64) float64 {
	switch w.kind {
	case waveformSine:
		return math.Sin(phase * 2 * math.Pi)
	case waveformTriangle:
		return math.Abs(fract(phase+0.75)-0.5)*4 - 1
	case waveformSawtooth:
		return fract(phase+0.5)*2 - 1
	case waveformPulse:
		if phase < w.width {
			return 1
		}
		return -1
	default:
		return 0
	}
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}
