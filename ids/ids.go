// Package ids defines the typed handles exchanged between the control
// side and the renderer: thin wrappers around arena.Key so a ClockKey
// can never be accidentally used where a TrackKey is expected, even
// though both are generational indices under the hood.
package ids

import "github.com/resonant-audio/resound/arena"

// ClockKey identifies a Clock.
type ClockKey arena.Key

// ModulatorKey identifies a Modulator (LFO, Tweener, ...).
type ModulatorKey arena.Key

// TrackKey identifies a sub-track or the main track.
type TrackKey arena.Key

// SendKey identifies a send track. Distinct from TrackKey so a send
// route can't be constructed pointing at an arbitrary sub-track and
// accidentally form a cycle — sends only ever receive input, they never
// route onward to anything but the main track.
type SendKey arena.Key

// SoundKey identifies a playing sound instance within a track.
type SoundKey arena.Key
