package tween

import "math"

// Easing curves the motion of a Tween. It mirrors kira's Easing enum
// (crates/kira/src/tween.rs): a linear ramp, integer and floating-point
// power curves in either direction, and the standard piecewise InOut
// composition of the two.
type Easing struct {
	kind EasingKind
	pow  float64
}

// EasingKind selects which curve family an Easing applies.
type EasingKind int

const (
	Linear EasingKind = iota
	InPow
	OutPow
	InOutPow
)

// LinearEasing performs no curving at all.
var LinearEasing = Easing{kind: Linear}

// InPowi starts slow and speeds up; a higher power is more dramatic.
func InPowi(power int) Easing { return Easing{kind: InPow, pow: float64(power)} }

// OutPowi starts fast and slows down; a higher power is more dramatic.
func OutPowi(power int) Easing { return Easing{kind: OutPow, pow: float64(power)} }

// InOutPowi starts slow, speeds up, then slows back down.
func InOutPowi(power int) Easing { return Easing{kind: InOutPow, pow: float64(power)} }

// InPowf is InPowi with a fractional exponent, at the cost of an extra
// pow() call versus an integer exponent.
func InPowf(power float64) Easing { return Easing{kind: InPow, pow: power} }

// OutPowf is OutPowi with a fractional exponent.
func OutPowf(power float64) Easing { return Easing{kind: OutPow, pow: power} }

// InOutPowf is InOutPowi with a fractional exponent.
func InOutPowf(power float64) Easing { return Easing{kind: InOutPow, pow: power} }

// Apply maps x in [0, 1] (elapsed/duration) through the curve.
func (e Easing) Apply(x float64) float64 {
	switch e.kind {
	case Linear:
		return x
	case InPow:
		return math.Pow(x, e.pow)
	case OutPow:
		return 1 - math.Pow(1-x, e.pow)
	case InOutPow:
		x *= 2
		if x < 1 {
			return 0.5 * math.Pow(x, e.pow)
		}
		x = 2 - x
		return 0.5*(1-math.Pow(x, e.pow)) + 0.5
	default:
		return x
	}
}
