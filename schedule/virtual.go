package schedule

import (
	"sync"
	"time"
)

// Virtual is a manually advanced clock. Callbacks run synchronously on the
// goroutine calling Advance, in deadline order; timers sharing a deadline run
// in the order they were scheduled.
type Virtual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers map[*virtualTimer]struct{}
}

// NewVirtual returns a virtual clock positioned at zero.
func NewVirtual() *Virtual {
	return &Virtual{timers: make(map[*virtualTimer]struct{})}
}

type virtualTimer struct {
	v        *Virtual
	deadline time.Duration
	seq      uint64
	fn       func()
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{v: v, deadline: v.now + d, seq: v.seq, fn: fn}
	v.timers[t] = struct{}{}
	return t
}

func (t *virtualTimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if _, ok := t.v.timers[t]; !ok {
		return false
	}
	delete(t.v.timers, t)
	return true
}

// Advance moves the clock forward by d, running every callback that becomes
// due. Callbacks scheduled while advancing run too if they fall inside d.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now + d
	v.mu.Unlock()

	for {
		v.mu.Lock()
		next := v.earliest(target)
		if next == nil {
			v.now = target
			v.mu.Unlock()
			return
		}
		delete(v.timers, next)
		v.now = next.deadline
		v.mu.Unlock()
		next.fn()
	}
}

func (v *Virtual) earliest(limit time.Duration) *virtualTimer {
	var best *virtualTimer
	for t := range v.timers {
		if t.deadline > limit {
			continue
		}
		if best == nil || t.deadline < best.deadline || (t.deadline == best.deadline && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Now returns the elapsed virtual time.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Pending returns the number of timers that have not yet fired or been stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}
