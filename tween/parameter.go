package tween

import (
	"time"

	"github.com/resonant-audio/resound/command"
	"github.com/resonant-audio/resound/info"
)

// ValueChangeCommand is what a handle's setter writes into a
// command.Writer: a new target value plus the tween to reach it by.
type ValueChangeCommand[T any] struct {
	Target Value[T]
	Tween  Tween
}

type parameterState int

const (
	stateIdle parameterState = iota
	stateTweening
)

// Parameter is a tweened scalar that advances per render chunk and is
// readable from the audio thread. It's the primitive every controllable
// quantity on a handle (volume, panning, playback rate, clock speed, an
// LFO's frequency, ...) is built from.
type Parameter[T any] struct {
	interp Interpolator[T]

	valueSource Value[T]
	current     T

	state           parameterState
	from, to        T
	elapsed         time.Duration
	tween           Tween
	waitingForStart bool
}

// NewParameter creates a Parameter with an initial source and default
// value, interpolated with interp whenever a Fixed-target tween runs.
func NewParameter[T any](source Value[T], def T, interp Interpolator[T]) *Parameter[T] {
	p := &Parameter[T]{interp: interp, valueSource: source, current: def}
	if source.kind == valueFixed {
		p.current = source.fixed
	}
	return p
}

// Value returns the parameter's current value as of the last
// UpdateChunk call.
func (p *Parameter[T]) Value() T {
	return p.current
}

// Settled reports whether the parameter is not in the middle of a tween
// (either idle, or modulator-driven). Callers that need to know when a
// fade-out/fade-in has finished (pause, stop, resume transitions) poll
// this after UpdateChunk.
func (p *Parameter[T]) Settled() bool {
	return p.state != stateTweening
}

// Set begins a new tween toward target. If target is FromModulator, the
// modulator takes over immediately and any in-flight tween toward a
// fixed value is abandoned — a modulator always wins over a concurrent
// tween rather than fighting it sample by sample.
func (p *Parameter[T]) Set(target Value[T], tw Tween) {
	p.valueSource = target
	if target.IsFromModulator() {
		p.state = stateIdle
		return
	}
	p.from = p.current
	p.to = target.fixed
	p.tween = tw
	p.elapsed = 0
	p.state = stateTweening
	p.waitingForStart = true
}

// ReadCommand applies at most one pending Set per call, draining reader.
func (p *Parameter[T]) ReadCommand(reader *command.Reader[ValueChangeCommand[T]]) {
	if cmd, ok := reader.Read(); ok {
		p.Set(cmd.Target, cmd.Tween)
	}
}

// UpdateChunk advances the parameter by len(out)*dtPerSample seconds and
// writes a per-sample value into out. Interpolation across the samples
// within one chunk is linear regardless of the tween's easing curve —
// the easing only shapes progress chunk-to-chunk, not within it. A
// zero-duration tween jumps to its target from the chunk's first sample.
func (p *Parameter[T]) UpdateChunk(out []T, dtPerSample float64, inf info.Info) {
	if p.valueSource.IsFromModulator() {
		p.updateFromModulator(out, inf)
		return
	}
	p.updateTween(out, dtPerSample, inf)
}

func (p *Parameter[T]) updateFromModulator(out []T, inf info.Info) {
	v, ok := p.valueSource.resolve(inf.Modulators.ModulatorValue, p.interp)
	if ok {
		p.current = v
	}
	for i := range out {
		out[i] = p.current
	}
}

func (p *Parameter[T]) updateTween(out []T, dtPerSample float64, inf info.Info) {
	if p.state != stateTweening {
		for i := range out {
			out[i] = p.current
		}
		return
	}

	chunkDuration := time.Duration(float64(len(out)) * dtPerSample * float64(time.Second))

	if p.waitingForStart {
		ready, unsatisfiable := p.tween.StartTime.Advance(chunkDuration, inf.Clocks)
		if unsatisfiable {
			p.state = stateIdle
			for i := range out {
				out[i] = p.current
			}
			return
		}
		if !ready {
			for i := range out {
				out[i] = p.current
			}
			return
		}
		p.waitingForStart = false
	}

	start := p.current
	p.elapsed += chunkDuration
	progress := p.tween.progress(p.elapsed)
	end := p.interp(p.from, p.to, progress)

	n := len(out)
	for i := range out {
		sampleAmount := float64(i+1) / float64(n)
		if p.tween.Duration <= 0 {
			sampleAmount = 1
		}
		out[i] = p.interp(start, end, sampleAmount)
	}
	p.current = end

	if p.elapsed >= p.tween.Duration {
		p.state = stateIdle
	}
}
