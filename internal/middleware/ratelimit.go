package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/templui/postline/internal/handler"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int           // Max requests allowed
	window   time.Duration // Time window for rate limiting

	// trustProxy keys clients by X-Forwarded-For / X-Real-IP. Only safe
	// behind a proxy that overwrites those headers.
	trustProxy bool
}

// NewRateLimiter allows limit requests per window for each IP, refilled evenly.
func NewRateLimiter(limit int, window time.Duration, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
	}
}

// Allow checks if request from IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// Cleanup drops IPs idle for two windows. Run it until stop is closed.
func (rl *RateLimiter) Cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.evict(time.Now().Add(-rl.window * 2))
		}
	}
}

func (rl *RateLimiter) evict(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429.
// A nil limiter or a non-positive limit disables it.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limiter.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r, limiter.trustProxy)

			if !limiter.Allow(ip) {
				slog.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", retryAfter(limiter))
				handler.WriteError(w, http.StatusTooManyRequests, "RateLimitExceeded",
					"Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(rl *RateLimiter) string {
	secs := int((rl.window / time.Duration(rl.limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// getClientIP extracts the client IP. Forwarding headers are client controlled
// and only consulted when trustProxy is set.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// Check X-Forwarded-For header (proxy/load balancer)
		xff := r.Header.Get("X-Forwarded-For")
		if xff != "" {
			// Take first IP in list
			ips := strings.Split(xff, ",")
			if len(ips) > 0 {
				return strings.TrimSpace(ips[0])
			}
		}

		// Check X-Real-IP header
		xri := r.Header.Get("X-Real-IP")
		if xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
