package manager

import (
	"errors"
	"fmt"

	"github.com/resonant-audio/resound/resource"
)

// ErrCapacityReached is returned whenever a Capacities limit blocks a
// new resource (sub-track, send, clock, modulator, or sound) from
// being created. It is the same value as resource.ErrCapacityReached,
// so callers can match on either name.
var ErrCapacityReached = resource.ErrCapacityReached

// PlaySoundError reports why a Play call failed: either the target
// track doesn't exist, or the track's own sound capacity was reached.
type PlaySoundError struct {
	// Op names the call that failed ("PlayStatic", "PlayStreamingOn", ...).
	Op  string
	Err error
}

func (e *PlaySoundError) Error() string {
	return fmt.Sprintf("manager: %s: %v", e.Op, e.Err)
}

func (e *PlaySoundError) Unwrap() error { return e.Err }

// ErrTrackNotFound is the Err a PlaySoundError wraps when the supplied
// ids.TrackKey doesn't resolve to a live sub-track.
var ErrTrackNotFound = errors.New("track not found")

// BackendError wraps a failure from the configured backend.Backend
// during Setup, Start, or Stop.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("manager: backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// DecodeError wraps a failure surfaced from a streaming sound's
// background decode worker, as reported through its handle's
// PopError method.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("manager: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
