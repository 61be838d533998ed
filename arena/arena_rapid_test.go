package arena

import (
	"testing"

	"pgregory.net/rapid"
)

// slotModel is a Controller+Arena pair kept in lockstep, the
// combination every resource.Storage relies on; the tests below drive
// it with randomized sequences of reserve/insert/remove/free calls.
type slotModel struct {
	ctrl *Controller
	a    *Arena[int]
	live map[uint32]Key // slot -> the Key currently valid for it, if occupied
}

func newSlotModel(capacity int) *slotModel {
	return &slotModel{
		ctrl: NewController(capacity),
		a:    New[int](capacity),
		live: make(map[uint32]Key),
	}
}

// TestRapidStaleKeyNeverResolvesAfterSlotReuse exercises random
// reserve/insert/remove/free sequences and checks the invariant the
// whole arena package exists to provide: once a slot is freed and its
// generation bumped, no Key minted before that point ever resolves
// again, even if the slot is immediately reused.
func TestRapidStaleKeyNeverResolvesAfterSlotReuse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(rt, "capacity")
		m := newSlotModel(capacity)
		var staleKeys []Key

		ops := rapid.IntRange(1, 200).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 1).Draw(rt, "op") {
			case 0: // reserve + insert
				key, err := m.ctrl.TryReserve()
				if err != nil {
					continue
				}
				if err := m.a.InsertWithKey(key, int(key.Slot)); err != nil {
					rt.Fatalf("InsertWithKey failed on a freshly reserved key: %v", err)
				}
				m.live[key.Slot] = key
			case 1: // remove + free a live slot, if any exist
				if len(m.live) == 0 {
					continue
				}
				var slot uint32
				for s := range m.live {
					slot = s
					break
				}
				key := m.live[slot]
				if _, ok := m.a.Remove(key); !ok {
					rt.Fatalf("Remove failed on a key this model believes is live")
				}
				m.ctrl.Free(key.Slot)
				delete(m.live, slot)
				staleKeys = append(staleKeys, key)
			}

			for _, key := range m.live {
				if _, ok := m.a.Get(key); !ok {
					rt.Fatalf("Get failed for a key this model believes is live: %+v", key)
				}
			}
			for _, key := range staleKeys {
				if live, ok := m.live[key.Slot]; ok && live == key {
					continue // this exact key was reserved again; no longer stale
				}
				if _, ok := m.a.Get(key); ok {
					rt.Fatalf("stale key %+v resolved after its slot was freed", key)
				}
			}
		}
	})
}

// TestRapidControllerNeverExceedsCapacity checks that a Controller
// never reserves more slots than its capacity, regardless of the
// reserve/free sequence.
func TestRapidControllerNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(0, 8).Draw(rt, "capacity")
		ctrl := NewController(capacity)
		var reserved []uint32

		ops := rapid.IntRange(1, 200).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			if len(reserved) < capacity && rapid.Bool().Draw(rt, "reserve") {
				key, err := ctrl.TryReserve()
				if err != nil {
					rt.Fatalf("TryReserve failed below capacity: %v", err)
				}
				reserved = append(reserved, key.Slot)
			} else if len(reserved) > 0 {
				idx := rapid.IntRange(0, len(reserved)-1).Draw(rt, "freeIdx")
				ctrl.Free(reserved[idx])
				reserved = append(reserved[:idx], reserved[idx+1:]...)
			}
			if ctrl.Len() > capacity {
				rt.Fatalf("Len() = %d exceeds capacity %d", ctrl.Len(), capacity)
			}
		}

		if len(reserved) == capacity && capacity > 0 {
			if _, err := ctrl.TryReserve(); err != ErrFull {
				rt.Fatalf("TryReserve at capacity = %v, want ErrFull", err)
			}
		}
	})
}
