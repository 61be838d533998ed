package clock

import (
	"github.com/resonant-audio/resound/arena"
	"github.com/resonant-audio/resound/ids"
	"github.com/resonant-audio/resound/info"
	"github.com/resonant-audio/resound/resource"
)

// Registry owns every Clock that currently exists and implements
// info.ClockInfoProvider so sounds, effects, and other clocks' own
// StartTime gates can query clock state without any package depending
// directly on this one.
type Registry struct {
	storage *resource.Storage[*Clock]
}

// NewRegistry creates a Registry with room for capacity clocks.
func NewRegistry(capacity int) *Registry {
	return &Registry{storage: resource.New[*Clock](capacity)}
}

// TryReserve claims a slot for a clock that doesn't exist yet.
func (r *Registry) TryReserve() (ids.ClockKey, error) {
	key, err := r.storage.TryReserve()
	return ids.ClockKey(key), err
}

// Insert queues c for installation under key on the next
// OnStartProcessing.
func (r *Registry) Insert(key ids.ClockKey, c *Clock) {
	r.storage.Insert(arena.Key(key), c)
}

// OnStartProcessing drains pending insertions, removes every clock
// whose handle was released, and runs each surviving clock's own
// OnStartProcessing. Call once per render chunk, before UpdateChunk.
func (r *Registry) OnStartProcessing(dtPerSample float64, n int, inf info.Info) {
	r.storage.OnStartProcessing(func(c **Clock) bool { return (*c).ShouldBeRemoved() })
	r.storage.Items().Iter(func(_ arena.Key, c **Clock) {
		(*c).OnStartProcessing(dtPerSample, n, inf)
	})
}

// UpdateChunk advances every clock by n samples.
func (r *Registry) UpdateChunk(n int, dtPerSample float64) {
	r.storage.Items().Iter(func(_ arena.Key, c **Clock) {
		(*c).UpdateChunk(n, dtPerSample)
	})
}

// ClockInfo implements info.ClockInfoProvider.
func (r *Registry) ClockInfo(key ids.ClockKey) (info.ClockInfo, bool) {
	c, ok := r.storage.Get(arena.Key(key))
	if !ok {
		return info.ClockInfo{}, false
	}
	return (*c).Info(), true
}
