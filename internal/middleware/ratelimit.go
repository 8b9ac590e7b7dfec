// Package middleware provides the HTTP middleware for the payment endpoints:
// bearer-token authentication and per-client rate limiting.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter tracks a rate limiter and its last access time
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter provides per-IP rate limiting with automatic cleanup
type RateLimiter struct {
	limiters        map[string]*ipLimiter
	mu              sync.Mutex
	rate            rate.Limit
	burst           int
	maxSize         int
	cleanupInterval time.Duration
	stopCh          chan struct{}
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: max requests per second per IP
// burst: max burst size
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters:        make(map[string]*ipLimiter),
		rate:            rate.Limit(requestsPerSecond),
		burst:           burst,
		maxSize:         10000,
		cleanupInterval: 5 * time.Minute,
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes entries that haven't been accessed in the last cleanup interval
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.cleanupInterval)
	for ip, limiter := range rl.limiters {
		if limiter.lastAccess.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

// Shutdown stops the cleanup goroutine
func (rl *RateLimiter) Shutdown() {
	close(rl.stopCh)
}

// getLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if exists {
		limiter.lastAccess = time.Now()
		return limiter.limiter
	}

	// Evict the oldest entry when the map is at capacity
	if len(rl.limiters) >= rl.maxSize {
		var oldestIP string
		var oldestTime time.Time
		first := true

		for candidate, lim := range rl.limiters {
			if first || lim.lastAccess.Before(oldestTime) {
				oldestIP = candidate
				oldestTime = lim.lastAccess
				first = false
			}
		}
		if oldestIP != "" {
			delete(rl.limiters, oldestIP)
		}
	}

	newLimiter := &ipLimiter{
		limiter:    rate.NewLimiter(rl.rate, rl.burst),
		lastAccess: time.Now(),
	}
	rl.limiters[ip] = newLimiter

	return newLimiter.limiter
}

// Middleware returns HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(clientIP(r))
		if !limiter.Allow() {
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the host part of RemoteAddr so that ephemeral ports do
// not fragment the limiter cache.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
