package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter caps requests per client IP over a fixed window. It guards
// the endpoints that hit the journal database or hold a connection open.
// Stale entries are pruned lazily once the map grows.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string]*clientWindow
	limit  int
	window time.Duration
}

type clientWindow struct {
	count int
	start time.Time
}

// NewRateLimiter allows limit requests per window for each client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:   make(map[string]*clientWindow),
		limit:  limit,
		window: window,
	}
}

// Allow records a request and reports whether it fits within the limit.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if len(rl.seen) > 1024 {
		rl.prune(now)
	}

	cw := rl.seen[ip]
	if cw == nil || now.Sub(cw.start) >= rl.window {
		rl.seen[ip] = &clientWindow{count: 1, start: now}
		return true
	}
	cw.count++
	return cw.count <= rl.limit
}

// RetryAfter returns how many seconds until the window resets for this IP.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw := rl.seen[ip]
	if cw == nil {
		return 0
	}
	remaining := rl.window - time.Since(cw.start)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *RateLimiter) prune(now time.Time) {
	for ip, cw := range rl.seen {
		if now.Sub(cw.start) >= rl.window {
			delete(rl.seen, ip)
		}
	}
}

// Limit wraps a handler, answering 429 once a client exceeds the limit.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP resolves the caller's address, honoring the first entry of
// X-Forwarded-For when a proxy supplies one.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
