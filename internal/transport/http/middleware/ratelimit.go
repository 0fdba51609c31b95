package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

// limiterIdleAfter is how long a key may stay silent before its limiter is dropped.
// It is longer than the time a full burst takes to refill, so dropping loses no state.
const limiterIdleAfter = 5 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type keyedLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
	limiters  map[string]*limiterEntry
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{
		limit:     limit,
		burst:     burst,
		idleAfter: limiterIdleAfter,
		now:       time.Now,
		limiters:  map[string]*limiterEntry{},
	}
}

func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if now.Sub(k.lastSweep) >= k.idleAfter {
		k.sweep(now)
	}
	entry, ok := k.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops idle limiters; callers hold mu.
func (k *keyedLimiter) sweep(now time.Time) {
	for key, entry := range k.limiters {
		if now.Sub(entry.lastSeen) >= k.idleAfter {
			delete(k.limiters, key)
		}
	}
	k.lastSweep = now
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// RateLimit allows perMinute requests per key with a burst of the same size.
// Keys default to the peer address.
func RateLimit(perMinute int, keyFn RateLimitKeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientIP
	}
	limiters := newKeyedLimiter(rate.Every(time.Minute/time.Duration(max(perMinute, 1))), max(perMinute, 1))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			limiter := limiters.get(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			if !limiter.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(max(60/perMinute, 1)))
				slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method, "limit", perMinute)
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPFunc picks the client IP resolver. X-Forwarded-For is only honoured when the
// service runs behind a proxy that overwrites it.
func ClientIPFunc(trustForwardedFor bool) RateLimitKeyFunc {
	if trustForwardedFor {
		return ForwardedClientIP
	}
	return ClientIP
}

// ClientIP is the peer address of the connection.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// ForwardedClientIP prefers the first X-Forwarded-For hop.
func ForwardedClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return ClientIP(r)
}
