/*
Package limiter provides per-IP request rate limiting middleware.

It maintains an independent token bucket for each client IP and evicts
buckets that have been idle for a while, keeping memory bounded even
under a churn of one-off clients.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/resp"
)

// ipLimiterEntry tracks the limiter and the last time an IP was seen.
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages independent rate limiters keyed by client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipLimiterEntry

	r     rate.Limit
	burst int
}

// NewIPRateLimiter creates an IPRateLimiter allowing r events per second with
// the given burst, and starts a background janitor that drops idle entries.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		entries: make(map[string]*ipLimiterEntry),
		r:       r,
		burst:   burst,
	}

	go l.cleanupLoop(5*time.Minute, 10*time.Minute)

	return l
}

// getLimiter returns the limiter for ip, creating it on first sight.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[ip]
	if !exists {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.r, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}

// cleanupLoop periodically removes entries that have not been seen within maxIdle.
func (l *IPRateLimiter) cleanupLoop(interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-maxIdle)

		l.mu.Lock()
		for ip, entry := range l.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects requests exceeding the per-IP rate with HTTP 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr without a port, e.g. behind some proxies.
			ip = r.RemoteAddr
		}

		if !l.getLimiter(ip).Allow() {
			logx.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
