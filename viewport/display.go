package viewport

import "sync"

// Window is a Display whose width is reported from outside, for example by
// a browser over a live connection. Its width is unknown until the first
// Resize.
type Window struct {
	mu        sync.Mutex
	width     int
	known     bool
	nextID    int
	listeners map[int]func()
}

// NewWindow returns a Window with no known width.
func NewWindow() *Window {
	return &Window{listeners: make(map[int]func())}
}

// Width implements Display.
func (w *Window) Width() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.known
}

// OnResize implements Display.
func (w *Window) OnResize(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// Resize records a new width and notifies every listener.
func (w *Window) Resize(width int) {
	w.mu.Lock()
	w.width = width
	w.known = true
	fns := make([]func(), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Listeners returns the number of registered resize listeners.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// Fixed is a Display that never resizes.
type Fixed int

// Width implements Display. Non-positive widths are reported as unknown.
func (f Fixed) Width() (int, bool) {
	return int(f), f > 0
}

// OnResize implements Display; a fixed display never signals.
func (Fixed) OnResize(func()) func() {
	return func() {}
}
