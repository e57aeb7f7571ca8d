package scheduler

import "testing"

func TestEveryRunsOnPeriod(t *testing.T) {
	s := New()
	var runs []uint64
	s.Every("probe", 2, 3, func(now uint64) bool {
		runs = append(runs, now)
		return true
	})
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	want := []uint64{2, 5, 8}
	if len(runs) != len(want) {
		t.Fatalf("runs=%v want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("runs=%v want %v", runs, want)
		}
	}
}

func TestReturnFalseCancels(t *testing.T) {
	s := New()
	n := 0
	task := s.Every("twice", 0, 1, func(uint64) bool {
		n++
		return n < 2
	})
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if n != 2 {
		t.Fatalf("expected 2 runs, got %d", n)
	}
	if !task.Cancelled() || s.Len() != 0 {
		t.Fatalf("task should be cancelled and removed, len=%d", s.Len())
	}
}

func TestTaskAddedDuringTickWaitsForNextTick(t *testing.T) {
	s := New()
	var childRuns []uint64
	s.Every("parent", 0, 100, func(now uint64) bool {
		s.Every("child", 0, 1, func(now uint64) bool {
			childRuns = append(childRuns, now)
			return false
		})
		return true
	})
	s.Tick()
	if len(childRuns) != 0 {
		t.Fatalf("child ran in the tick it was registered: %v", childRuns)
	}
	s.Tick()
	if len(childRuns) != 1 || childRuns[0] != 1 {
		t.Fatalf("child runs=%v", childRuns)
	}
}

func TestCancelIsIndependent(t *testing.T) {
	s := New()
	a, b := 0, 0
	ta := s.Every("a", 0, 1, func(uint64) bool { a++; return true })
	s.Every("b", 0, 1, func(uint64) bool { b++; return true })
	s.Tick()
	ta.Cancel()
	s.Tick()
	s.Tick()
	if a != 1 || b != 3 {
		t.Fatalf("a=%d b=%d", a, b)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear left %d tasks", s.Len())
	}
	if got := s.Tick(); got != 3 {
		t.Fatalf("tick counter=%d", got)
	}
}
