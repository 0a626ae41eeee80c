// Package schedule abstracts one-shot timers so timer-driven components can
// run against the wall clock in production and a virtual clock in tests.
package schedule

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real schedules callbacks on the wall clock via time.AfterFunc.
var Real Scheduler = realScheduler{}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Every runs fn every d on s until the returned Timer is stopped. The next
// tick is scheduled before fn runs, so the period stays fixed regardless of
// how long fn takes.
func Every(s Scheduler, d time.Duration, fn func()) Timer {
	t := &ticker{s: s, d: d, fn: fn}
	t.mu.Lock()
	t.next = s.AfterFunc(d, t.fire)
	t.mu.Unlock()
	return t
}

type ticker struct {
	mu      sync.Mutex
	s       Scheduler
	d       time.Duration
	fn      func()
	next    Timer
	stopped bool
}

func (t *ticker) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.next = t.s.AfterFunc(t.d, t.fire)
	t.mu.Unlock()
	t.fn()
}

func (t *ticker) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return t.next.Stop()
}
