// Package simulate schedules the deferred phases of the simulated engines.
// Every scheduled phase is a Task that can be cancelled before it fires.
package simulate

import (
	"context"
	"sync"
	"time"

	"agentchat/internal/domain"
)

// Scheduler runs fn once after delay d.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) *Task
}

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskFired
	taskCancelled
)

// Task is a pending deferred phase. The zero value is not usable; tasks are
// created by a Scheduler.
type Task struct {
	mu    sync.Mutex
	state taskState
	done  chan struct{}
	stop  func() bool // releases scheduler resources on cancel; may be nil
	Due   time.Time
}

func newTask(due time.Time) *Task {
	return &Task{done: make(chan struct{}), Due: due}
}

// begin moves the task to running. It returns false if the task was cancelled.
func (t *Task) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskPending {
		return false
	}
	t.state = taskRunning
	return true
}

func (t *Task) finish() {
	t.mu.Lock()
	t.state = taskFired
	t.mu.Unlock()
	close(t.done)
}

// run executes fn unless the task was cancelled first.
func (t *Task) run(fn func()) {
	if !t.begin() {
		return
	}
	defer t.finish()
	fn()
}

// Cancel prevents the task from firing. It returns true if the task was
// still pending, false if it already started, fired, or was cancelled.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != taskPending {
		t.mu.Unlock()
		return false
	}
	t.state = taskCancelled
	stop := t.stop
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
	close(t.done)
	return true
}

// Done is closed once the task has fired or been cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Fired reports whether the task ran to completion.
func (t *Task) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskFired
}

// Cancelled reports whether the task was cancelled before firing.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskCancelled
}

// Wait blocks until the task fires or is cancelled, or ctx ends.
// A cancelled task returns ErrCancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		if t.Cancelled() {
			return domain.NewSubSystemError("task", "Task.Wait", domain.ErrCancelled, "")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TimerScheduler fires tasks on real timers.
type TimerScheduler struct {
	now func() time.Time
}

// NewTimerScheduler returns a scheduler backed by time.AfterFunc.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{now: time.Now}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) *Task {
	t := newTask(s.now().Add(d))
	t.mu.Lock()
	timer := time.AfterFunc(d, func() { t.run(fn) })
	t.stop = timer.Stop
	t.mu.Unlock()
	return t
}
