// Package resource adds the control-thread-facing plumbing around an
// arena: reserving a slot before a resource exists, shipping the
// finished resource to the audio thread without blocking, and
// collecting resources the audio thread has dropped so their cleanup
// (closing a decoder, freeing a native buffer) happens off the render
// path.
package resource

import (
	"errors"

	"github.com/resonant-audio/resound/arena"
	"github.com/resonant-audio/resound/internal/ringbuf"
)

// ErrCapacityReached is returned by TryReserve once every slot is
// either occupied or reserved but not yet inserted.
var ErrCapacityReached = errors.New("resource: capacity reached")

// entry pairs a reserved key with the resource built for it, the unit
// shipped across the pending-insert ring.
type entry[T any] struct {
	key  arena.Key
	item T
}

// Storage holds a capacity-bounded arena of resources that lives on
// the audio thread, fed by a lock-free pending-insert ring from the
// control thread. Keys are reserved synchronously (TryReserve), but
// insertion and removal are only ever applied from OnStartProcessing,
// so the render loop never contends with control-thread callers.
type Storage[T any] struct {
	controller *arena.Controller
	items      *arena.Arena[T]
	pending    *ringbuf.Ring[entry[T]]
	dropped    *ringbuf.Ring[T]
}

// New creates a Storage with room for capacity resources.
func New[T any](capacity int) *Storage[T] {
	return &Storage[T]{
		controller: arena.NewController(capacity),
		items:      arena.New[T](capacity),
		pending:    ringbuf.New[entry[T]](capacity),
		dropped:    ringbuf.New[T](capacity),
	}
}

// Capacity returns the total number of resources this Storage can hold
// at once.
func (s *Storage[T]) Capacity() int {
	return s.items.Capacity()
}

// TryReserve claims a slot for a resource that doesn't exist yet.
// Call this before doing any expensive work (decoding a header,
// opening a file) so a capacity failure is reported immediately rather
// than after that work is wasted.
func (s *Storage[T]) TryReserve() (arena.Key, error) {
	key, err := s.controller.TryReserve()
	if err != nil {
		return arena.Key{}, ErrCapacityReached
	}
	return key, nil
}

// Insert queues item for installation under key on the next
// OnStartProcessing call. key must come from a prior successful
// TryReserve on this Storage. Insert panics if the pending ring is
// full, which only happens if reservations are made faster than
// OnStartProcessing ever runs to drain them — a capacity bug upstream,
// not a recoverable runtime condition.
func (s *Storage[T]) Insert(key arena.Key, item T) {
	if !s.pending.Push(entry[T]{key: key, item: item}) {
		panic("resource: pending-insert ring is full")
	}
}

// Items exposes the underlying arena for iteration and lookup.
func (s *Storage[T]) Items() *arena.Arena[T] {
	return s.items
}

// Len returns the number of resources currently installed.
func (s *Storage[T]) Len() int {
	return s.items.Len()
}

// Get looks up a resource by key.
func (s *Storage[T]) Get(key arena.Key) (*T, bool) {
	return s.items.Get(key)
}

// OnStartProcessing drains every pending insertion into the arena,
// then removes every resource for which shouldRemove returns true,
// pushing each removed value onto the dropped-items ring for the
// control thread to finalize via TakeDropped. Call exactly once per
// render chunk, before touching any resource for that chunk.
func (s *Storage[T]) OnStartProcessing(shouldRemove func(*T) bool) {
	for {
		e, ok := s.pending.Pop()
		if !ok {
			break
		}
		if err := s.items.InsertWithKey(e.key, e.item); err != nil {
			panic("resource: insert failed, a reservation outlived its arena slot")
		}
	}
	s.items.DrainFilter(shouldRemove, func(key arena.Key, item T) {
		s.controller.Free(key.Slot)
		s.dropped.Push(item)
	})
}

// TakeDropped returns the next resource removed by OnStartProcessing,
// for the caller (on the control thread) to finalize. Call this in a
// loop until it reports ok=false.
func (s *Storage[T]) TakeDropped() (T, bool) {
	return s.dropped.Pop()
}
