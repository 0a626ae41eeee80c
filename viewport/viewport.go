// Package viewport classifies a display as mobile or desktop by its width
// and keeps that classification current as the display is resized.
package viewport

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// MobileBreakpoint is the first width, in CSS pixels, treated as desktop.
const MobileBreakpoint = 768

// IsMobile reports whether width falls below the mobile breakpoint.
func IsMobile(width int) bool {
	return width < MobileBreakpoint
}

// Mode is a layout classification.
type Mode int

const (
	Desktop Mode = iota
	Mobile
)

// ModeFor classifies width.
func ModeFor(width int) Mode {
	if IsMobile(width) {
		return Mobile
	}
	return Desktop
}

func (m Mode) String() string {
	if m == Mobile {
		return "mobile"
	}
	return "desktop"
}

// Display is a surface with a width that may change over time.
type Display interface {
	// Width returns the current width, or false if there is no viewport.
	Width() (int, bool)
	// OnResize registers fn to run on every resize and returns a function
	// that deregisters it.
	OnResize(fn func()) (remove func())
}

// Detector tracks whether a Display is in mobile mode.
type Detector struct {
	// notify serializes recomputation and delivery, so flips reach onChange
	// in the order they were computed and the last one matches IsMobile.
	notify sync.Mutex

	mu       sync.Mutex
	display  Display
	mobile   bool
	onChange func(mobile bool)
	remove   func()
	closed   bool
}

// NewDetector computes the initial mode of d and subscribes to its resize
// signal. A nil display, or one without a width, is treated as desktop.
// onChange may be nil; it runs each time the mode flips, one call at a time.
// It may call IsMobile, Mode and Close.
func NewDetector(d Display, onChange func(mobile bool)) *Detector {
	det := &Detector{display: d, onChange: onChange}
	if d == nil {
		return det
	}
	det.mobile = det.measure()
	det.remove = d.OnResize(det.recompute)
	return det
}

func (det *Detector) measure() bool {
	w, ok := det.display.Width()
	return ok && IsMobile(w)
}

func (det *Detector) recompute() {
	det.notify.Lock()
	defer det.notify.Unlock()

	det.mu.Lock()
	if det.closed {
		det.mu.Unlock()
		return
	}
	mobile := det.measure()
	changed := mobile != det.mobile
	det.mobile = mobile
	fn := det.onChange
	det.mu.Unlock()

	if changed && fn != nil {
		fn(mobile)
	}
}

// IsMobile returns the current classification.
func (det *Detector) IsMobile() bool {
	det.mu.Lock()
	defer det.mu.Unlock()
	return det.mobile
}

// Mode returns the current classification as a Mode.
func (det *Detector) Mode() Mode {
	if det.IsMobile() {
		return Mobile
	}
	return Desktop
}

// Close deregisters the resize listener. It is safe to call more than once.
func (det *Detector) Close() {
	det.mu.Lock()
	if det.closed {
		det.mu.Unlock()
		return
	}
	det.closed = true
	remove := det.remove
	det.remove = nil
	det.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// ParseHint extracts the viewport width client hint from h.
func ParseHint(h http.Header) (int, bool) {
	for _, key := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			continue
		}
		w, err := strconv.Atoi(v)
		if err != nil || w <= 0 {
			continue
		}
		return w, true
	}
	return 0, false
}
