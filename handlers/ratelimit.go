package handlers

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

type clientWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a fixed-window per-client request counter. It is
// constructed once in main and injected into the middleware chain; there
// is no package-level counter state.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	clients   map[string]*clientWindow
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter(requestsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   requestsPerWindow,
		window:  window,
		clients: make(map[string]*clientWindow),
		now:     time.Now,
	}
}

// Allow records one request for the client and reports whether it stays
// within the window limit, along with the current count.
func (rl *RateLimiter) Allow(clientID string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	cw, ok := rl.clients[clientID]
	if !ok || now.Sub(cw.windowStart) > rl.window {
		rl.clients[clientID] = &clientWindow{count: 1, windowStart: now}
		return true, 1
	}
	if cw.count >= rl.limit {
		return false, cw.count
	}
	cw.count++
	return true, cw.count
}

// sweep drops clients whose window expired, at most once per window, so
// the map does not grow with every distinct client IP ever seen. Called
// with the mutex held.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) <= rl.window {
		return
	}
	rl.lastSweep = now
	for id, cw := range rl.clients {
		if now.Sub(cw.windowStart) > rl.window {
			delete(rl.clients, id)
		}
	}
}

// Middleware rejects requests over the limit with a 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, _ := rl.Allow(clientIP(r))
		if !ok {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Detail: fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %s.", rl.limit, rl.window),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
