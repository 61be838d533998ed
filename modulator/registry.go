package modulator

import (
	"github.com/resonant-audio/resound/arena"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/resource"
)

// Registry owns every Modulator that currently exists and implements
// info.ModulatorValueProvider so any Value.FromModulator can resolve a
// modulator's current output without a direct dependency on this
// package.
type Registry struct {
	storage    *resource.Storage[Modulator]
	valueBuf   []float64
	lastValue  map[arena.Key]float64
}

// NewRegistry creates a Registry with room for capacity modulators.
func NewRegistry(capacity, internalBufferSize int) *Registry {
	return &Registry{
		storage:   resource.New[Modulator](capacity),
		valueBuf:  make([]float64, internalBufferSize),
		lastValue: make(map[arena.Key]float64, capacity),
	}
}

// TryReserve claims a slot for a modulator that doesn't exist yet.
func (r *Registry) TryReserve() (ids.ModulatorKey, error) {
	key, err := r.storage.TryReserve()
	return ids.ModulatorKey(key), err
}

// Insert queues m for installation under key on the next
// OnStartProcessing.
func (r *Registry) Insert(key ids.ModulatorKey, m Modulator) {
	r.storage.Insert(arena.Key(key), m)
}

// OnStartProcessing drains pending insertions, removes every modulator
// that reports Finished, and runs each surviving modulator's own
// OnStartProcessing. Call once per render chunk, before UpdateChunk.
func (r *Registry) OnStartProcessing() {
	r.storage.OnStartProcessing(func(m *Modulator) bool { return (*m).Finished() })
	r.storage.Items().Iter(func(key arena.Key, m *Modulator) {
		(*m).OnStartProcessing()
		if _, ok := r.lastValue[key]; !ok {
			r.lastValue[key] = 0
		}
	})
}

// UpdateChunk advances every modulator by len(out-per-modulator) samples,
// where n is the chunk length, and records each modulator's final
// sample as its latest value for ModulatorValue to report.
func (r *Registry) UpdateChunk(n int, dtPerSample float64, inf info.Info) {
	buf := r.valueBuf[:n]
	r.storage.Items().Iter(func(key arena.Key, m *Modulator) {
		(*m).UpdateChunk(dtPerSample, inf, buf)
		r.lastValue[key] = buf[n-1]
	})
}

// ModulatorValue implements info.ModulatorValueProvider, returning the
// last sample of the modulator's most recent UpdateChunk.
func (r *Registry) ModulatorValue(key ids.ModulatorKey) (float64, bool) {
	v, ok := r.lastValue[arena.Key(key)]
	return v, ok
}
