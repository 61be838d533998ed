package arena

import "sync/atomic"

// noNextFreeSlot marks a controllerSlot as having no free slot after it.
// atomic.Uint32 has no sentinel "absent" value, so the arena's capacity
// itself can never collide with this marker as long as capacity fits in
// 32 bits minus one, which every realistic resource capacity does.
const noNextFreeSlot = ^uint32(0)

type controllerSlot struct {
	free           atomic.Bool
	generation     atomic.Uint32
	nextFreeSlot   atomic.Uint32
}

// Controller lets a control thread reserve Arena slots with a lock-free
// CAS loop on the free-list head, without ever touching the Arena
// itself (which is only safe to mutate from the audio thread). It
// mirrors kira's arena::controller::Controller exactly: the same
// free-list-as-singly-linked-list-of-atomics design, translated from
// Rust's AtomicUsize/AtomicBool to Go's typed sync/atomic values.
type Controller struct {
	slots        []controllerSlot
	firstFree    atomic.Uint32
}

// NewController creates a Controller paired with an Arena of the same
// capacity. The two must agree on capacity: the controller reserves
// slot indices the arena will later host data in.
func NewController(capacity int) *Controller {
	c := &Controller{slots: make([]controllerSlot, capacity)}
	for i := range c.slots {
		c.slots[i].free.Store(true)
		if i == capacity-1 {
			c.slots[i].nextFreeSlot.Store(noNextFreeSlot)
		} else {
			c.slots[i].nextFreeSlot.Store(uint32(i + 1))
		}
	}
	if capacity == 0 {
		c.firstFree.Store(noNextFreeSlot)
	}
	return c
}

// Capacity returns the total number of slots this controller manages.
func (c *Controller) Capacity() int { return len(c.slots) }

// Len returns the number of slots currently reserved (not yet freed).
func (c *Controller) Len() int {
	n := 0
	for i := range c.slots {
		if !c.slots[i].free.Load() {
			n++
		}
	}
	return n
}

// TryReserve reserves a free slot and returns its Key, or ErrFull if
// the arena is at capacity. Never blocks: a CAS loss just retries.
func (c *Controller) TryReserve() (Key, error) {
	for {
		head := c.firstFree.Load()
		if head == noNextFreeSlot {
			return Key{}, ErrFull
		}
		s := &c.slots[head]
		next := s.nextFreeSlot.Load()
		if c.firstFree.CompareAndSwap(head, next) {
			s.free.Store(false)
			return Key{Slot: head, Generation: s.generation.Load()}, nil
		}
	}
}

// Free releases a previously reserved slot back to the free list and
// bumps its generation, so any Key still referencing it becomes stale.
func (c *Controller) Free(slot uint32) {
	s := &c.slots[slot]
	s.free.Store(true)
	s.generation.Add(1)
	for {
		head := c.firstFree.Load()
		s.nextFreeSlot.Store(head)
		if c.firstFree.CompareAndSwap(head, slot) {
			return
		}
	}
}
