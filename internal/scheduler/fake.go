package scheduler

import (
	"sync"
	"time"
)

// Fake is a manually driven Scheduler. Nothing fires until Advance moves the
// fake clock past a task's due time; due callbacks then run synchronously on
// the goroutine calling Advance, earliest first.
type Fake struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	f   *Fake
	due time.Duration
	seq int
	fn  func()
}

// NewFake returns a Fake positioned at time zero.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	if d < 0 {
		d = 0
	}
	f.seq++
	t := &fakeTask{f: f, due: f.now + d, seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every callback that becomes
// due. Callbacks scheduled by other callbacks fire too if they fall due
// within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	for {
		next := f.popDueLocked(target)
		if next == nil {
			break
		}
		f.now = next.due
		f.mu.Unlock()
		next.fn()
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
}

// Elapsed returns how far the fake clock has advanced.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Pending returns the number of callbacks that have neither fired nor been cancelled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *Fake) popDueLocked(target time.Duration) *fakeTask {
	idx := -1
	for i, t := range f.tasks {
		if t.due > target {
			continue
		}
		if idx == -1 || t.due < f.tasks[idx].due || (t.due == f.tasks[idx].due && t.seq < f.tasks[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}
	t := f.tasks[idx]
	f.tasks = append(f.tasks[:idx], f.tasks[idx+1:]...)
	return t
}

func (t *fakeTask) Cancel() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()

	for i, other := range t.f.tasks {
		if other == t {
			t.f.tasks = append(t.f.tasks[:i], t.f.tasks[i+1:]...)
			return true
		}
	}
	return false
}
