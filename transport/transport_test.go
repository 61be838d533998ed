package transport

import "testing"

func TestStopsAtEnd(t *testing.T) {
	tr := New(5, nil, false)
	tr.Position = 2
	for i := int64(2); i <= 4; i++ {
		if tr.Position != i {
			t.Fatalf("position = %d, want %d", tr.Position, i)
		}
		if !tr.Playing {
			t.Fatalf("expected playing at position %d", i)
		}
		tr.IncrementPosition()
	}
	if tr.Position != 5 {
		t.Fatalf("position = %d, want 5", tr.Position)
	}
	if tr.Playing {
		t.Fatalf("expected playback to have stopped past the last frame")
	}
}

func TestStopsAtStartWhenPlayingBackwards(t *testing.T) {
	tr := New(5, nil, false)
	tr.Position = 4
	for i := int64(4); i >= 0; i-- {
		if tr.Position != i {
			t.Fatalf("position = %d, want %d", tr.Position, i)
		}
		if !tr.Playing {
			t.Fatalf("expected playing at position %d", i)
		}
		tr.DecrementPosition()
	}
	if tr.Position != -1 {
		t.Fatalf("position = %d, want -1", tr.Position)
	}
	if tr.Playing {
		t.Fatalf("expected playback to have stopped before the first frame")
	}
}

func TestLoops(t *testing.T) {
	tr := New(10, &Region{Start: 2, End: 5}, false)
	want := []int64{0, 1, 2, 3, 4, 2, 3, 4, 2, 3}
	for _, w := range want {
		if tr.Position != w {
			t.Fatalf("position = %d, want %d", tr.Position, w)
		}
		if !tr.Playing {
			t.Fatalf("expected playing while looping, position %d", tr.Position)
		}
		tr.IncrementPosition()
	}
}

func TestLoopsWhenPlayingBackward(t *testing.T) {
	tr := New(10, &Region{Start: 2, End: 5}, false)
	tr.Position = 10
	want := []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 4, 3, 2}
	for _, w := range want {
		if tr.Position != w {
			t.Fatalf("position = %d, want %d", tr.Position, w)
		}
		tr.DecrementPosition()
	}
}

func TestLoopWrapping(t *testing.T) {
	tr := New(10, &Region{Start: 2, End: 5}, false)
	tr.Position = 6
	tr.IncrementPosition()
	if tr.Position != 4 {
		t.Fatalf("position = %d, want 4", tr.Position)
	}
	tr.Position = 1
	tr.DecrementPosition()
	if tr.Position != 3 {
		t.Fatalf("position = %d, want 3", tr.Position)
	}
}

func TestSeekToWrapsIntoLoopRegionInSeekDirection(t *testing.T) {
	tr := New(10, &Region{Start: 2, End: 5}, false)
	tr.Position = 2

	tr.SeekTo(14) // ahead of current position, should wrap down into [2,5)
	if tr.Position != 2 {
		t.Fatalf("seeking forward past loop end: position = %d, want 2", tr.Position)
	}

	tr.SeekTo(-4) // behind current position, should wrap up into [2,5)
	if tr.Position != 2 {
		t.Fatalf("seeking backward past loop start: position = %d, want 2", tr.Position)
	}
}

func TestSeekPastEndStopsPlayback(t *testing.T) {
	tr := New(10, nil, false)
	tr.SeekTo(20)
	if tr.Playing {
		t.Fatalf("expected seeking past the end to stop playback")
	}
}

func TestReverseStartsAtLastFrame(t *testing.T) {
	tr := New(10, nil, true)
	if tr.Position != 9 {
		t.Fatalf("position = %d, want 9", tr.Position)
	}
}

func TestAdvanceFollowsReverseFlag(t *testing.T) {
	tr := New(10, nil, true)
	start := tr.Position
	tr.Advance()
	if tr.Position != start-1 {
		t.Fatalf("reverse Advance: position = %d, want %d", tr.Position, start-1)
	}

	fwd := New(10, nil, false)
	fwd.Advance()
	if fwd.Position != 1 {
		t.Fatalf("forward Advance: position = %d, want 1", fwd.Position)
	}
}
