package tween

import "time"

// Tween describes a finite, eased transition from a current value to a
// target value over a duration, gated by an optional start-time.
type Tween struct {
	StartTime StartTime
	Duration  time.Duration
	Easing    Easing
}

// DefaultTween matches kira's Tween::default(): immediate, 10ms, linear.
// A short default avoids zipper noise on parameter changes that don't
// specify their own tween.
var DefaultTween = Tween{
	StartTime: Immediate,
	Duration:  10 * time.Millisecond,
	Easing:    LinearEasing,
}

// progress returns the eased fraction of the tween completed at the
// given elapsed time since the gate opened, clamped to [0, 1].
func (t Tween) progress(elapsed time.Duration) float64 {
	if t.Duration <= 0 {
		return 1
	}
	x := elapsed.Seconds() / t.Duration.Seconds()
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	return t.Easing.Apply(x)
}
