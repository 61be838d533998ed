package tween

import (
	"time"

	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
)

type startTimeKind int

const (
	startImmediate startTimeKind = iota
	startDelayed
	startClockTime
)

// StartTime gates when a Tween begins. It's Immediate by default, or can
// wait for a fixed delay or for a Clock to reach a given tick count. A
// Delayed start's remaining time counts down as Advance is called; once
// it reaches zero (or a ClockTime's condition is met) the gate opens for
// good and Advance keeps reporting ready on every later call.
type StartTime struct {
	kind      startTimeKind
	remaining time.Duration
	clock     ids.ClockKey
	ticks     uint64
}

// Immediate starts as soon as the command is processed.
var Immediate = StartTime{kind: startImmediate}

// Delayed starts after d has elapsed since the command was processed.
func Delayed(d time.Duration) StartTime {
	return StartTime{kind: startDelayed, remaining: d}
}

// AtClockTime starts once clock is ticking and has reached at least the
// given tick count. The check runs once per render chunk against the
// clock's state at the end of that chunk, so the start lands on the
// first sample of the chunk in which the tick is reached, not on the
// sample the tick itself falls on.
func AtClockTime(clock ids.ClockKey, ticks uint64) StartTime {
	return StartTime{kind: startClockTime, clock: clock, ticks: ticks}
}

// Advance moves a Delayed start's countdown forward by dt and checks a
// ClockTime start against the current clock state. It reports whether
// the gate is now open, and whether it can never open (a ClockTime
// start whose clock has been dropped).
func (s *StartTime) Advance(dt time.Duration, clocks info.ClockInfoProvider) (ready, unsatisfiable bool) {
	switch s.kind {
	case startImmediate:
		return true, false
	case startDelayed:
		s.remaining -= dt
		if s.remaining <= 0 {
			s.kind = startImmediate
			return true, false
		}
		return false, false
	case startClockTime:
		ci, ok := clocks.ClockInfo(s.clock)
		if !ok {
			return false, true
		}
		if ci.Ticking && ci.Ticks >= s.ticks {
			s.kind = startImmediate
			return true, false
		}
		return false, false
	default:
		return true, false
	}
}
