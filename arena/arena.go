package arena

import "errors"

// ErrFull is returned when an Arena has no free slots left.
var ErrFull = errors.New("arena: at capacity")

// ErrStale is returned when a Key's generation doesn't match the slot's
// current generation, meaning the resource it pointed to has since been
// removed.
var ErrStale = errors.New("arena: stale key")

type slotState int

const (
	stateFree slotState = iota
	stateOccupied
)

type slot[T any] struct {
	generation uint32
	state      slotState
	data       T
	// prevOcc/nextOcc thread occupied slots into a doubly-linked list in
	// insertion order, so iteration can walk newest-first in O(live)
	// without scanning free slots.
	prevOcc, nextOcc int32
	nextFree         int32
}

const noLink = -1

// Arena is fixed-capacity, generational-index slot storage. It is safe
// for use only by the single thread that owns it (the audio thread);
// concurrent reservation from a control thread goes through a paired
// Controller instead.
type Arena[T any] struct {
	slots    []slot[T]
	freeHead int32
	occHead  int32 // most recently inserted occupied slot
	occTail  int32
	len      int
}

// New creates an Arena with room for capacity items.
func New[T any](capacity int) *Arena[T] {
	a := &Arena[T]{
		slots:    make([]slot[T], capacity),
		freeHead: 0,
		occHead:  noLink,
		occTail:  noLink,
	}
	for i := range a.slots {
		if i == capacity-1 {
			a.slots[i].nextFree = noLink
		} else {
			a.slots[i].nextFree = int32(i + 1)
		}
	}
	if capacity == 0 {
		a.freeHead = noLink
	}
	return a
}

// Capacity returns the total number of slots.
func (a *Arena[T]) Capacity() int { return len(a.slots) }

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int { return a.len }

// InsertWithKey installs data into the slot reserved by key (typically
// obtained from a paired Controller.TryReserve). It fails if the slot's
// generation no longer matches (the reservation was superseded) or the
// slot index is out of range.
func (a *Arena[T]) InsertWithKey(key Key, data T) error {
	if int(key.Slot) >= len(a.slots) {
		return ErrFull
	}
	s := &a.slots[key.Slot]
	if s.generation != key.Generation {
		return ErrStale
	}
	s.state = stateOccupied
	s.data = data
	a.linkOccupied(int32(key.Slot))
	a.len++
	return nil
}

func (a *Arena[T]) linkOccupied(idx int32) {
	s := &a.slots[idx]
	s.prevOcc = noLink
	s.nextOcc = a.occHead
	if a.occHead != noLink {
		a.slots[a.occHead].prevOcc = idx
	}
	a.occHead = idx
	if a.occTail == noLink {
		a.occTail = idx
	}
}

func (a *Arena[T]) unlinkOccupied(idx int32) {
	s := &a.slots[idx]
	if s.prevOcc != noLink {
		a.slots[s.prevOcc].nextOcc = s.nextOcc
	} else {
		a.occHead = s.nextOcc
	}
	if s.nextOcc != noLink {
		a.slots[s.nextOcc].prevOcc = s.prevOcc
	} else {
		a.occTail = s.prevOcc
	}
}

// Remove removes and returns the data at key, bumping the slot's
// generation so any outstanding stale Key can never resolve to the
// reused slot.
func (a *Arena[T]) Remove(key Key) (T, bool) {
	var zero T
	if int(key.Slot) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[key.Slot]
	if s.state != stateOccupied || s.generation != key.Generation {
		return zero, false
	}
	data := s.data
	s.data = zero
	s.state = stateFree
	s.generation++
	a.unlinkOccupied(int32(key.Slot))
	s.nextFree = a.freeHead
	a.freeHead = int32(key.Slot)
	a.len--
	return data, true
}

// Get returns a pointer to the data at key, or nil if the key is stale
// or out of range.
func (a *Arena[T]) Get(key Key) (*T, bool) {
	if int(key.Slot) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[key.Slot]
	if s.state != stateOccupied || s.generation != key.Generation {
		return nil, false
	}
	return &s.data, true
}

// Iter calls fn for every occupied slot, newest-insertion-first. fn may
// not insert or remove slots during iteration.
func (a *Arena[T]) Iter(fn func(Key, *T)) {
	idx := a.occHead
	for idx != noLink {
		s := &a.slots[idx]
		next := s.nextOcc
		fn(Key{Slot: uint32(idx), Generation: s.generation}, &s.data)
		idx = next
	}
}

// DrainFilter removes every occupied slot for which shouldRemove
// returns true, calling onRemoved with the removed data before the
// slot is recycled. Occupied-list linkage is preserved for the slots
// that remain.
func (a *Arena[T]) DrainFilter(shouldRemove func(*T) bool, onRemoved func(Key, T)) {
	idx := a.occHead
	for idx != noLink {
		s := &a.slots[idx]
		next := s.nextOcc
		if shouldRemove(&s.data) {
			key := Key{Slot: uint32(idx), Generation: s.generation}
			data, _ := a.Remove(key)
			if onRemoved != nil {
				onRemoved(key, data)
			}
		}
		idx = next
	}
}
