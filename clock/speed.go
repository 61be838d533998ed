package clock

import "github.com/resonant-audio/resound/tween"

type speedKind int

const (
	speedSecondsPerTick speedKind = iota
	speedTicksPerSecond
	speedTicksPerMinute
)

// Speed is the rate a Clock ticks at, expressed in one of three
// equivalent units that convert losslessly into each other.
type Speed struct {
	kind  speedKind
	value float64
}

// SecondsPerTick creates a Speed that ticks once every v seconds.
func SecondsPerTick(v float64) Speed { return Speed{kind: speedSecondsPerTick, value: v} }

// TicksPerSecond creates a Speed that ticks v times per second.
func TicksPerSecond(v float64) Speed { return Speed{kind: speedTicksPerSecond, value: v} }

// TicksPerMinute creates a Speed that ticks v times per minute.
func TicksPerMinute(v float64) Speed { return Speed{kind: speedTicksPerMinute, value: v} }

// AsSecondsPerTick returns the speed as the number of seconds between
// ticks.
func (s Speed) AsSecondsPerTick() float64 {
	switch s.kind {
	case speedSecondsPerTick:
		return s.value
	case speedTicksPerSecond:
		return 1 / s.value
	default:
		return 60 / s.value
	}
}

// AsTicksPerSecond returns the speed as a tick rate in Hz.
func (s Speed) AsTicksPerSecond() float64 {
	switch s.kind {
	case speedSecondsPerTick:
		return 1 / s.value
	case speedTicksPerSecond:
		return s.value
	default:
		return s.value / 60
	}
}

// AsTicksPerMinute returns the speed as ticks per minute.
func (s Speed) AsTicksPerMinute() float64 {
	switch s.kind {
	case speedSecondsPerTick:
		return 60 / s.value
	case speedTicksPerSecond:
		return s.value * 60
	default:
		return s.value
	}
}

// InterpolateSpeed tweens from a to b, measuring progress in whichever
// unit b is expressed in — tweening toward "2 ticks per second"
// interpolates ticks-per-second values even if a was given in
// seconds-per-tick.
func InterpolateSpeed(a, b Speed, amount float64) Speed {
	switch b.kind {
	case speedSecondsPerTick:
		return SecondsPerTick(tween.LerpFloat(a.AsSecondsPerTick(), b.value, amount))
	case speedTicksPerSecond:
		return TicksPerSecond(tween.LerpFloat(a.AsTicksPerSecond(), b.value, amount))
	default:
		return TicksPerMinute(tween.LerpFloat(a.AsTicksPerMinute(), b.value, amount))
	}
}
