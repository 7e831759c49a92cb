package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/kbukum/voicegate/errors"
)

// RateLimitConfig sets a per-client sliding-window limit.
type RateLimitConfig struct {
	// RequestsPerMinute of zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RateLimitStore counts requests per key. Allow records one request and
// reports whether key is still within limit for the current window.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit rejects clients over the limit with 429 RATE_LIMITED. Clients are
// keyed by remote IP. A nil store keeps counts in process memory. A store
// error lets the request through.
func RateLimit(cfg RateLimitConfig, store RateLimitStore) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg.RequestsPerMinute <= 0 {
			return next
		}
		if store == nil {
			store = newRateLimiter(time.Now)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := store.Allow(r.Context(), clientIP(r), cfg.RequestsPerMinute, time.Minute)
			if err == nil && !ok {
				w.Header().Set("Retry-After", "60")
				writeError(w, apperrors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiter is the in-memory sliding-window store.
type rateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(now func() time.Time) *rateLimiter {
	return &rateLimiter{
		requests:  make(map[string][]time.Time),
		now:       now,
		lastSweep: now(),
	}
}

func (rl *rateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-window)
	if now.Sub(rl.lastSweep) > 5*window {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= limit {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

// sweep drops idle clients. Callers hold mu.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		if valid := filterByTime(times, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}
