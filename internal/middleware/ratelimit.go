package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/handler"
	"github.com/DukeRupert/estoque/internal/metrics"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// defaultWindow replaces a non-positive window.
const defaultWindow = 15 * time.Minute

// NewRateLimiter creates a limiter allowing maxAttempts per window and starts
// the goroutine that evicts expired entries. Call Close to stop it.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = defaultWindow
	}
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
		stop:        make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records a request for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.entries[key]
	if !exists || now.Sub(entry.windowStart) > rl.window {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true
	}
	return false
}

// TimeUntilReset returns how long until the window for key restarts.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}
	elapsed := rl.now().Sub(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}
	return rl.window - elapsed
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, entry := range rl.entries {
				if now.Sub(entry.windowStart) > rl.window {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware rejects clients over their limit with 429.
type RateLimitMiddleware struct {
	name    string
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a middleware around limiter. name labels the
// rate_limited_total metric.
func NewRateLimitMiddleware(name string, limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		name:    name,
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns middleware that rate limits requests per client IP.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if m.limiter.Allow(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		metrics.RateLimitedTotal.WithLabelValues(m.name).Inc()
		m.logger.Warn("rate limit exceeded",
			"limiter", m.name,
			"ip", clientIP,
			"path", r.URL.Path,
			"method", r.Method,
		)

		retryAfter := int(m.limiter.TimeUntilReset(clientIP).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

		handler.ErrorResponse(w, r, m.logger,
			domain.Errorf(domain.ERATELIMIT, "", "Too many requests. Please try again later."))
	})
}

// =============================================================================
// Auth Rate Limiter
// =============================================================================

// AuthRateLimiter limits the credential endpoints: login (including the
// login branch of POST /api/auth) and register.
type AuthRateLimiter struct {
	login  *RateLimitMiddleware
	closer func()
}

// NewAuthRateLimiter creates a limiter allowing maxAttempts per window and IP.
func NewAuthRateLimiter(maxAttempts int, window time.Duration, logger *slog.Logger) *AuthRateLimiter {
	limiter := NewRateLimiter(maxAttempts, window)
	return &AuthRateLimiter{
		login:  NewRateLimitMiddleware("auth", limiter, logger),
		closer: limiter.Close,
	}
}

// Limit returns the rate limiting middleware for credential endpoints.
func (a *AuthRateLimiter) Limit(next http.Handler) http.Handler {
	return a.login.Limit(next)
}

// Close stops the underlying limiter.
func (a *AuthRateLimiter) Close() {
	a.closer()
}

// =============================================================================
// Helpers
// =============================================================================

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if clientIP := strings.TrimSpace(first); clientIP != "" {
			return clientIP
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
