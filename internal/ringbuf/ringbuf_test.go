package ringbuf

import "testing"

func TestPushPopOrderAndCapacity(t *testing.T) {
	r := New[int](3)

	if !r.Push(1) || !r.Push(2) || !r.Push(3) {
		t.Fatalf("expected three pushes into a capacity-3 ring to succeed")
	}
	if r.Push(4) {
		t.Fatalf("expected push into a full ring to fail")
	}
	if !r.IsFull() {
		t.Fatalf("expected IsFull once at capacity")
	}

	for _, want := range []int{1, 2, 3} {
		got, ok := r.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = %v, %v; want %v, true", got, ok, want)
		}
	}
	if !r.IsEmpty() {
		t.Fatalf("expected IsEmpty after draining all pushed items")
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("Pop on empty ring should return ok=false")
	}
}

func TestPushPopWrapsAroundIndices(t *testing.T) {
	r := New[int](2)
	for i := 0; i < 10; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d should have succeeded into an empty slot", i)
		}
		got, ok := r.Pop()
		if !ok || got != i {
			t.Fatalf("Pop() = %v, %v; want %v, true", got, ok, i)
		}
	}
}
