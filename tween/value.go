package tween

import "github.com/resonant-audio/resound/ids"

// Interpolator blends two values of T at amount in [0, 1]. Go has no way
// to add an Interpolate method to primitives like float64, so instead of
// mirroring kira's Tweenable trait with a method, Parameter takes an
// Interpolator function supplied by the caller at construction time —
// the same information, expressed as a value instead of a trait impl.
type Interpolator[T any] func(a, b T, amount float64) T

// LerpFloat linearly interpolates any float-kinded type.
func LerpFloat[T ~float32 | ~float64](a, b T, amount float64) T {
	return a + T(amount)*(b-a)
}

// Mapping describes how a Value[T] sourced FromModulator converts a
// modulator's [0, 1]-ish output into a domain value: an input range to
// normalize against, an output range to scale into, an easing curve
// applied to the normalized position, and whether to clamp past either
// end of the input range instead of extrapolating.
type Mapping[T any] struct {
	InputRangeLow, InputRangeHigh   float64
	OutputRangeLow, OutputRangeHigh T
	Easing                         Easing
	ClampBottom, ClampTop           bool
}

type valueKind int

const (
	valueFixed valueKind = iota
	valueFromModulator
)

// Value is either a fixed target or a reference to a modulator plus the
// mapping that converts the modulator's raw output into T.
type Value[T any] struct {
	kind      valueKind
	fixed     T
	modulator ids.ModulatorKey
	mapping   Mapping[T]
}

// Fixed creates a Value that never changes except through an explicit
// Parameter.Set tween.
func Fixed[T any](v T) Value[T] {
	return Value[T]{kind: valueFixed, fixed: v}
}

// FromModulator creates a Value driven by a modulator's output each
// render chunk, through mapping.
func FromModulator[T any](modulator ids.ModulatorKey, mapping Mapping[T]) Value[T] {
	return Value[T]{kind: valueFromModulator, modulator: modulator, mapping: mapping}
}

// IsFromModulator reports whether v is modulator-driven.
func (v Value[T]) IsFromModulator() bool {
	return v.kind == valueFromModulator
}

// ModulatorKey returns the modulator this value is mapped from. Only
// meaningful when IsFromModulator is true.
func (v Value[T]) ModulatorKey() ids.ModulatorKey {
	return v.modulator
}

// resolve computes the current value: the fixed target as-is, or the
// modulator's raw output run through the mapping. ok is false only when
// the value is FromModulator and the modulator has been removed, in
// which case the caller should keep using the last-known value.
func (v Value[T]) resolve(raw func(ids.ModulatorKey) (float64, bool), interp Interpolator[T]) (T, bool) {
	if v.kind == valueFixed {
		return v.fixed, true
	}
	rawValue, ok := raw(v.modulator)
	if !ok {
		var zero T
		return zero, false
	}
	m := v.mapping
	t := (rawValue - m.InputRangeLow) / (m.InputRangeHigh - m.InputRangeLow)
	if m.ClampBottom && t < 0 {
		t = 0
	}
	if m.ClampTop && t > 1 {
		t = 1
	}
	t = m.Easing.Apply(t)
	return interp(m.OutputRangeLow, m.OutputRangeHigh, t), true
}
