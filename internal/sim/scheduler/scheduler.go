// Package scheduler runs periodic tasks off a single cooperative tick counter.
// It is not safe for concurrent use; the owning loop goroutine drives it.
package scheduler

// TaskFunc runs once per period. Returning false cancels the task.
type TaskFunc func(nowTick uint64) bool

type Task struct {
	id        uint64
	name      string
	next      uint64
	period    uint64
	fn        TaskFunc
	cancelled bool
}

func (t *Task) Name() string { return t.name }

// Cancel stops the task before its next run. Safe to call more than once.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

func (t *Task) Cancelled() bool { return t == nil || t.cancelled }

type Scheduler struct {
	now    uint64
	nextID uint64
	tasks  []*Task
}

func New() *Scheduler { return &Scheduler{} }

// Now is the tick that the next call to Tick will run.
func (s *Scheduler) Now() uint64 { return s.now }

// Every registers fn to first run delay ticks from now and then every period
// ticks. A zero period is treated as 1. Tasks registered while a tick is being
// processed never run in that same tick.
func (s *Scheduler) Every(name string, delay, period uint64, fn TaskFunc) *Task {
	if period == 0 {
		period = 1
	}
	s.nextID++
	t := &Task{
		id:     s.nextID,
		name:   name,
		next:   s.now + delay,
		period: period,
		fn:     fn,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Tick runs every due task in registration order and advances the clock.
// It returns the tick that was just processed.
func (s *Scheduler) Tick() uint64 {
	nowTick := s.now
	due := s.tasks
	n := len(due)
	for i := 0; i < n; i++ {
		t := due[i]
		if t.cancelled || t.next > nowTick {
			continue
		}
		if !t.fn(nowTick) {
			t.cancelled = true
			continue
		}
		t.next = nowTick + t.period
	}
	s.compact()
	s.now++
	return nowTick
}

// Len reports the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Clear cancels every task.
func (s *Scheduler) Clear() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
	s.tasks = nil
}

func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}
