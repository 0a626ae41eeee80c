package folio

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// IPLimiter rate-limits requests per client IP with a token bucket each.
type IPLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewIPLimiter creates an IPLimiter allowing limit events per second with the
// given burst. Buckets idle for longer than idle (default one minute) are
// dropped.
func NewIPLimiter(limit rate.Limit, burst int, idle time.Duration) *IPLimiter {
	if idle <= 0 {
		idle = time.Minute
	}
	l := &IPLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idle:     idle,
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *IPLimiter) cleanup() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

func (l *IPLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idle)
	l.mu.Lock()
	for ip, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
	l.mu.Unlock()
}

// Allow reports whether ip may proceed now and consumes a token if so.
func (l *IPLimiter) Allow(ip string) bool {
	return l.allowAt(ip, time.Now())
}

func (l *IPLimiter) allowAt(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked IPs.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *IPLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
func (l *IPLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many connections")
			}
			return next(c)
		}
	}
}
