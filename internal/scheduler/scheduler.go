// Package scheduler provides cancelable deferred callbacks. Production code
// uses Real; tests substitute Fake to control when callbacks fire.
package scheduler

import "time"

// Task is a scheduled callback.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// Scheduler runs fn once after d has elapsed, without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

type realScheduler struct{}

// Real returns a Scheduler backed by the runtime timer.
// Callbacks run on their own goroutine.
func Real() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return realTask{t: time.AfterFunc(d, fn)}
}

type realTask struct {
	t *time.Timer
}

func (r realTask) Cancel() bool {
	return r.t.Stop()
}
