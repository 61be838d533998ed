// Package clock implements the monotonic tick generator sounds and
// tweens schedule themselves against: a speed (itself a tweened
// Parameter), a ticking flag, and a tick count with fractional
// position between ticks, all published through shared atomics so a
// control-thread Handle can read them without touching the audio
// thread.
package clock

import (
	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/tween"
)

// Clock is a monotonic tick generator. While ticking, its fractional
// position advances each sample by Speed (converted to ticks per
// second); whenever that position reaches 1, it wraps and the tick
// count increments. Ticking, speed, and reset are all controlled from
// a paired Handle through command channels; Clock itself only ever
// runs on the audio thread.
type Clock struct {
	ticking            bool
	started            bool
	ticks              uint64
	fractionalPosition float64

	speed    *tween.Parameter[Speed]
	speedBuf []Speed

	shared *Shared

	setTickingReader *command.Reader[bool]
	resetReader      *command.Reader[struct{}]
	speedReader      *command.Reader[tween.ValueChangeCommand[Speed]]
}

// New creates a Clock at the given initial speed along with the Handle
// used to control it. internalBufferSize bounds the largest chunk
// UpdateChunk will ever be asked to process in one call.
func New(speed Speed, internalBufferSize int) (*Clock, *Handle) {
	setTickingWriter, setTickingReader := command.NewChannel[bool]()
	resetWriter, resetReader := command.NewChannel[struct{}]()
	speedWriter, speedReader := command.NewChannel[tween.ValueChangeCommand[Speed]]()
	shared := &Shared{}

	c := &Clock{
		speed:            tween.NewParameter(tween.Fixed(speed), speed, InterpolateSpeed),
		speedBuf:         make([]Speed, internalBufferSize),
		shared:           shared,
		setTickingReader: setTickingReader,
		resetReader:      resetReader,
		speedReader:      speedReader,
	}
	h := &Handle{
		shared:           shared,
		setTickingWriter: setTickingWriter,
		resetWriter:      resetWriter,
		speedWriter:      speedWriter,
	}
	return c, h
}

// Shared exposes the atomics a ClockInfoProvider reads from to answer
// queries about this clock without touching the audio thread's state.
func (c *Clock) Shared() *Shared { return c.shared }

// ShouldBeRemoved reports whether the paired Handle has been released,
// the signal the owning resource.Storage sweeps on.
func (c *Clock) ShouldBeRemoved() bool { return c.shared.isMarkedForRemoval() }

// OnStartProcessing applies at most one pending set_ticking and one
// pending reset command, advances the speed parameter by one render
// chunk, and republishes state into Shared. Call once per render chunk
// before UpdateChunk.
func (c *Clock) OnStartProcessing(dtPerSample float64, n int, inf info.Info) {
	if v, ok := c.setTickingReader.Read(); ok {
		c.ticking = v
	}
	if _, ok := c.resetReader.Read(); ok {
		c.started = false
		c.ticks = 0
		c.fractionalPosition = 0
	}
	c.speed.ReadCommand(c.speedReader)

	buf := c.speedBuf[:n]
	c.speed.UpdateChunk(buf, dtPerSample, inf)

	c.shared.publish(c.ticking, c.ticks, c.fractionalPosition)
}

// UpdateChunk advances the clock by n samples at dtPerSample seconds
// each, using the per-sample speed buffer filled by the preceding
// OnStartProcessing call. Tick count and fractional position become
// visible to the rest of the render graph through Info (the Registry
// reads it live), which the renderer consults after this call, so
// consumers see the state at the end of this chunk; nothing downstream observes which sample within this chunk a tick
// boundary fell on, so a ClockTime-gated start resolves at chunk
// granularity (see StartTime.Advance and its callers).
func (c *Clock) UpdateChunk(n int, dtPerSample float64) {
	if !c.ticking {
		return
	}
	c.started = true
	buf := c.speedBuf[:n]
	for i := 0; i < n; i++ {
		c.fractionalPosition += buf[i].AsTicksPerSecond() * dtPerSample
		for c.fractionalPosition >= 1 {
			c.fractionalPosition -= 1
			c.ticks++
		}
	}
}

// Info returns a snapshot of this clock's state as of the last
// UpdateChunk, the shape consumed by info.ClockInfoProvider.
func (c *Clock) Info() info.ClockInfo {
	return info.ClockInfo{
		Ticking:            c.ticking,
		Ticks:              c.ticks,
		FractionalPosition: c.fractionalPosition,
	}
}
