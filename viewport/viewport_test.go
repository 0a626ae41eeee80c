package viewport

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestIsMobileThreshold(t *testing.T) {
	tests := []struct {
		width int
		want  bool
	}{
		{0, true},
		{320, true},
		{767, true},
		{768, false},
		{769, false},
		{1920, false},
	}
	for _, tt := range tests {
		if got := IsMobile(tt.width); got != tt.want {
			t.Errorf("IsMobile(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(767) != Mobile || ModeFor(768) != Desktop {
		t.Error("ModeFor disagrees with IsMobile at the breakpoint")
	}
	if Mobile.String() != "mobile" || Desktop.String() != "desktop" {
		t.Errorf("unexpected Mode strings %q, %q", Mobile, Desktop)
	}
}

func TestDetectorInitialMeasure(t *testing.T) {
	w := NewWindow()
	w.Resize(500)
	det := NewDetector(w, nil)
	defer det.Close()

	if !det.IsMobile() {
		t.Error("expected 500px window to start mobile")
	}
	if det.Mode() != Mobile {
		t.Errorf("Mode() = %v, want mobile", det.Mode())
	}
}

func TestDetectorWithoutViewportDefaultsToDesktop(t *testing.T) {
	det := NewDetector(nil, nil)
	defer det.Close()
	if det.IsMobile() {
		t.Error("nil display should be desktop")
	}

	unknown := NewDetector(NewWindow(), nil)
	defer unknown.Close()
	if unknown.IsMobile() {
		t.Error("window with no width should be desktop")
	}

	if NewDetector(Fixed(0), nil).IsMobile() {
		t.Error("zero fixed width should be desktop")
	}
}

func TestDetectorRecomputesOnEveryResize(t *testing.T) {
	w := NewWindow()
	w.Resize(1024)

	var flips []bool
	det := NewDetector(w, func(mobile bool) { flips = append(flips, mobile) })
	defer det.Close()

	for _, width := range []int{1000, 767, 700, 768, 769, 300} {
		w.Resize(width)
		if got, want := det.IsMobile(), IsMobile(width); got != want {
			t.Fatalf("after Resize(%d) IsMobile = %v, want %v", width, got, want)
		}
	}

	want := []bool{true, false, true}
	if len(flips) != len(want) {
		t.Fatalf("flips = %v, want %v", flips, want)
	}
	for i := range want {
		if flips[i] != want[i] {
			t.Errorf("flip[%d] = %v, want %v", i, flips[i], want[i])
		}
	}
}

func TestDetectorCloseRemovesListener(t *testing.T) {
	w := NewWindow()
	w.Resize(1200)

	calls := 0
	det := NewDetector(w, func(bool) { calls++ })
	if w.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", w.Listeners())
	}

	det.Close()
	det.Close()
	if w.Listeners() != 0 {
		t.Fatalf("Listeners() = %d after Close, want 0", w.Listeners())
	}

	w.Resize(400)
	if calls != 0 {
		t.Errorf("onChange fired %d times after Close", calls)
	}
	if det.IsMobile() {
		t.Error("closed detector should keep its last value")
	}
}

func TestDetectorDeliversFlipsInOrder(t *testing.T) {
	w := NewWindow()
	entered := make(chan struct{})
	release := make(chan struct{})

	var (
		mu    sync.Mutex
		flips []bool
	)
	det := NewDetector(w, func(mobile bool) {
		mu.Lock()
		flips = append(flips, mobile)
		first := len(flips) == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	})
	defer det.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Resize(500)
	}()
	<-entered
	go func() {
		defer wg.Done()
		w.Resize(1000)
	}()
	deadline := time.Now().Add(5 * time.Second)
	for width, _ := w.Width(); width != 1000; width, _ = w.Width() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the second resize")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if det.IsMobile() {
		t.Fatal("IsMobile() = true after resizing to 1000")
	}
	if len(flips) == 0 || flips[len(flips)-1] != det.IsMobile() {
		t.Errorf("flips = %v, last notification disagrees with IsMobile() = %v", flips, det.IsMobile())
	}
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   int
		ok     bool
	}{
		{"none", nil, 0, false},
		{"sec-ch", map[string]string{"Sec-CH-Viewport-Width": "412"}, 412, true},
		{"legacy", map[string]string{"Viewport-Width": " 1280 "}, 1280, true},
		{"prefers sec-ch", map[string]string{"Sec-CH-Viewport-Width": "800", "Viewport-Width": "300"}, 800, true},
		{"malformed falls through", map[string]string{"Sec-CH-Viewport-Width": "wide", "Viewport-Width": "600"}, 600, true},
		{"negative", map[string]string{"Viewport-Width": "-5"}, 0, false},
	}
	for _, tt := range tests {
		h := http.Header{}
		for k, v := range tt.header {
			h.Set(k, v)
		}
		got, ok := ParseHint(h)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: ParseHint = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
