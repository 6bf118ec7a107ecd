package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fc-faces/internal/observability"
)

// IPLimitStore counts login hits per client IP in shared storage.
type IPLimitStore interface {
	AllowLoginIP(ctx context.Context, ip string, maxHits int, window time.Duration, now time.Time) (bool, time.Duration, error)
}

// LoginRateLimiter caps login requests per client IP over a sliding window.
// With a store the count is shared across instances; without one, or when
// the store fails, it is kept in memory.
type LoginRateLimiter struct {
	mu        sync.Mutex
	store     IPLimitStore
	logger    *observability.Logger
	maxHits   int
	window    time.Duration
	hitByIP   map[string][]time.Time
	maxMemory int
	now       func() time.Time
}

func NewLoginRateLimiter(store IPLimitStore, logger *observability.Logger, maxHits int, window time.Duration) *LoginRateLimiter {
	if maxHits <= 0 {
		maxHits = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &LoginRateLimiter{
		store:     store,
		logger:    logger,
		maxHits:   maxHits,
		window:    window,
		hitByIP:   make(map[string][]time.Time),
		maxMemory: 5000,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (l *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		now := l.now()

		allowed, retryAfter := l.check(r.Context(), ip, now)
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Too many login attempts")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *LoginRateLimiter) check(ctx context.Context, ip string, now time.Time) (bool, time.Duration) {
	if l.store != nil {
		allowed, retryAfter, err := l.store.AllowLoginIP(ctx, ip, l.maxHits, l.window, now)
		if err == nil {
			return allowed, retryAfter
		}
		l.logger.Error("login_rate_limit_store_failed", map[string]any{"error": err.Error()})
	}
	return l.allow(ip, now)
}

func (l *LoginRateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	threshold := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.hitByIP[ip]
	filtered := make([]time.Time, 0, len(hits)+1)
	for _, hit := range hits {
		if hit.After(threshold) {
			filtered = append(filtered, hit)
		}
	}

	if len(filtered) >= l.maxHits {
		retryAfter := filtered[0].Add(l.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		l.hitByIP[ip] = filtered
		return false, retryAfter
	}

	filtered = append(filtered, now)
	l.hitByIP[ip] = filtered

	if len(l.hitByIP) > l.maxMemory {
		for key, value := range l.hitByIP {
			if len(value) == 0 || value[len(value)-1].Before(threshold) {
				delete(l.hitByIP, key)
			}
		}
	}

	return true, 0
}

func clientIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		ip, _, _ := strings.Cut(xForwardedFor, ",")
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
