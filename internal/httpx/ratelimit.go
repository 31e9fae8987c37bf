package httpx

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimiter keeps one token bucket per client IP; idle buckets expire.
type rateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newRateLimiter(perMin int) *rateLimiter {
	if perMin <= 0 {
		return nil
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](1000, nil, 5*time.Minute),
		limit:    rate.Limit(float64(perMin) / 60.0),
		burst:    perMin,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !l.allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "message": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
