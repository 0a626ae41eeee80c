// Package rotator cycles through a fixed sequence of short strings on a
// timer, exposing a transition window before each advance so a view can
// animate the outgoing string.
package rotator

import (
	"errors"
	"sync"
	"time"

	"github.com/eringen/folio/schedule"
)

const (
	// DefaultInterval is the period between visible string changes.
	DefaultInterval = 3000 * time.Millisecond
	// DefaultTransition is the exit window that precedes each advance.
	DefaultTransition = 500 * time.Millisecond
)

var (
	// ErrEmptySequence is returned when a rotator is built with nothing to show.
	ErrEmptySequence = errors.New("rotator: empty sequence")
	// ErrTiming is returned when the transition does not fit inside the interval.
	ErrTiming = errors.New("rotator: transition must be positive and shorter than the interval")
)

// State is what a consuming view renders.
type State struct {
	Index         int
	Text          string
	Transitioning bool
}

// Rotator is a two-state cycle: idle on the current string, then
// transitioning out of it until the transition timer advances the index.
type Rotator struct {
	mu            sync.Mutex
	seq           []string
	index         int
	transitioning bool

	sched      schedule.Scheduler
	interval   time.Duration
	transition time.Duration
	onChange   func(State)

	cycle   schedule.Timer
	flip    schedule.Timer
	running bool
	stopped bool
}

// Option configures a Rotator.
type Option func(*Rotator)

// WithScheduler replaces the wall clock.
func WithScheduler(s schedule.Scheduler) Option {
	return func(r *Rotator) { r.sched = s }
}

// WithInterval sets the cycle period (default 3s).
func WithInterval(d time.Duration) Option {
	return func(r *Rotator) { r.interval = d }
}

// WithTransition sets the exit window (default 500ms).
func WithTransition(d time.Duration) Option {
	return func(r *Rotator) { r.transition = d }
}

// WithOnChange registers fn to receive every state change. fn runs while the
// rotator's lock is held and must not call back into the Rotator.
func WithOnChange(fn func(State)) Option {
	return func(r *Rotator) { r.onChange = fn }
}

// New returns an idle Rotator positioned on seq[0]. seq is copied.
func New(seq []string, opts ...Option) (*Rotator, error) {
	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}
	r := &Rotator{
		seq:        append([]string(nil), seq...),
		sched:      schedule.Real,
		interval:   DefaultInterval,
		transition: DefaultTransition,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.transition <= 0 || r.transition >= r.interval {
		return nil, ErrTiming
	}
	return r, nil
}

// Start begins cycling. Calling Start on a running or stopped Rotator does nothing.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.stopped {
		return
	}
	r.running = true
	r.cycle = schedule.Every(r.sched, r.interval, r.beginTransition)
}

// Stop clears both timers. A Rotator cannot be restarted.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.cycle != nil {
		r.cycle.Stop()
	}
	if r.flip != nil {
		r.flip.Stop()
	}
}

// State returns the current state.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state()
}

func (r *Rotator) state() State {
	return State{Index: r.index, Text: r.seq[r.index], Transitioning: r.transitioning}
}

func (r *Rotator) beginTransition() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.transitioning = true
	r.flip = r.sched.AfterFunc(r.transition, r.advance)
	r.emit()
}

func (r *Rotator) advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.index = (r.index + 1) % len(r.seq)
	r.transitioning = false
	r.flip = nil
	r.emit()
}

func (r *Rotator) emit() {
	if r.onChange != nil {
		r.onChange(r.state())
	}
}
