package httpapi

import (
	"net/http"
	"sync"
	"time"
)

const (
	defaultRequestsPerMinute = 120

	// Stale windows are swept inline once the map grows past this.
	sweepThreshold = 1024
)

// rateLimiter caps request bursts per caller. Requests are keyed by the
// authenticated user when present, by remote address otherwise. A caller's
// window resets after a minute of quiet.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	now       func() time.Time
	windows   map[string]*requestWindow
}

type requestWindow struct {
	start    time.Time
	requests int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	return &rateLimiter{
		perMinute: perMinute,
		now:       time.Now,
		windows:   make(map[string]*requestWindow),
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > time.Minute {
		if len(l.windows) >= sweepThreshold {
			l.sweep(now)
		}
		l.windows[key] = &requestWindow{start: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.perMinute
}

// sweep drops windows that went quiet. Called with the lock held.
func (l *rateLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) > time.Minute {
			delete(l.windows, key)
		}
	}
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(userIDHeader)
		if key == "" {
			key = r.RemoteAddr
		}
		if !l.allow(key) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
