// Package debounce provides a cancellable delayed task. Scheduling a new task
// supersedes the pending one, so only the last request in a burst fires.
package debounce

import (
	"sync"
	"time"
)

// Debouncer hands out Tasks; at most one is pending at a time.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *Task
}

// New returns a Debouncer with the given delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule cancels any pending task and returns a new one that fires after
// the delay.
func (d *Debouncer) Schedule() *Task {
	return d.ScheduleAfter(d.delay)
}

// ScheduleAfter is Schedule with an explicit delay for this one task.
func (d *Debouncer) ScheduleAfter(delay time.Duration) *Task {
	t := &Task{
		timer: time.NewTimer(delay),
		done:  make(chan struct{}),
	}

	d.mu.Lock()
	prev := d.pending
	d.pending = t
	d.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return t
}

// Cancel cancels the pending task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	prev := d.pending
	d.pending = nil
	d.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// Task is one scheduled firing.
type Task struct {
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
}

// Wait blocks until the delay elapses (true) or the task is cancelled or
// superseded (false).
func (t *Task) Wait() bool {
	select {
	case <-t.timer.C:
		select {
		case <-t.done:
			return false
		default:
			return true
		}
	case <-t.done:
		return false
	}
}

// Cancel stops the task. Safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.timer.Stop()
		close(t.done)
	})
}
