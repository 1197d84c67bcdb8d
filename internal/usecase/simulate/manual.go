package simulate

import (
	"slices"
	"sync"
	"time"
)

type manualEntry struct {
	task *Task
	fn   func()
	seq  uint64
}

// ManualScheduler fires tasks only when its virtual clock is advanced.
// Tests and the one-shot CLI use it to run deferred phases deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []manualEntry
}

// NewManualScheduler returns a scheduler whose virtual clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := newTask(s.now.Add(d))
	s.pending = append(s.pending, manualEntry{task: t, fn: fn, seq: s.seq})
	return t
}

// Now returns the virtual clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks that have neither fired nor been cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.pending {
		select {
		case <-e.task.Done():
		default:
			n++
		}
	}
	return n
}

// Advance moves the virtual clock forward by d and fires every task that is
// due, earliest first, ties in scheduling order. Tasks scheduled by a firing
// task run in the same call if they fall due. It returns the number fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	fired := 0
	for {
		e, ok := s.popDue(target)
		if !ok {
			break
		}
		if e.task.begin() {
			e.fn()
			e.task.finish()
			fired++
		}
	}

	s.mu.Lock()
	if target.After(s.now) {
		s.now = target
	}
	s.mu.Unlock()
	return fired
}

// FlushAll fires every pending task regardless of its due time.
func (s *ManualScheduler) FlushAll() int {
	fired := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return fired
		}
		last := s.pending[0].task.Due
		for _, e := range s.pending {
			if e.task.Due.After(last) {
				last = e.task.Due
			}
		}
		d := last.Sub(s.now)
		s.mu.Unlock()
		if d < 0 {
			d = 0
		}
		fired += s.Advance(d)
	}
}

// popDue removes and returns the earliest task due at or before target.
// Cancelled tasks are dropped.
func (s *ManualScheduler) popDue(target time.Time) (manualEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = slices.DeleteFunc(s.pending, func(e manualEntry) bool {
		return e.task.Cancelled()
	})
	if len(s.pending) == 0 {
		return manualEntry{}, false
	}

	best := -1
	for i, e := range s.pending {
		if e.task.Due.After(target) {
			continue
		}
		if best < 0 || e.task.Due.Before(s.pending[best].task.Due) ||
			(e.task.Due.Equal(s.pending[best].task.Due) && e.seq < s.pending[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return manualEntry{}, false
	}

	e := s.pending[best]
	s.pending = slices.Delete(s.pending, best, best+1)
	if e.task.Due.After(s.now) {
		s.now = e.task.Due
	}
	return e, true
}
