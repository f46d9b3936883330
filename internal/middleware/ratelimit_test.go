package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source for the limiter.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, max int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, window)
	rl.mu.Lock()
	rl.now = clock.Now
	rl.mu.Unlock()
	t.Cleanup(rl.Close)
	return rl, clock
}

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other keys have their own budget")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	require.True(t, rl.Allow("ip"))
	require.False(t, rl.Allow("ip"))

	clock.Advance(30 * time.Second)
	assert.False(t, rl.Allow("ip"))
	assert.Equal(t, 30*time.Second, rl.TimeUntilReset("ip"))

	clock.Advance(31 * time.Second)
	assert.True(t, rl.Allow("ip"))
}

func TestRateLimiter_TimeUntilResetUnknownKey(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	assert.Zero(t, rl.TimeUntilReset("nobody"))
}

func TestNewRateLimiter_NonPositiveWindow(t *testing.T) {
	rl := NewRateLimiter(1, 0)
	defer rl.Close()
	assert.Equal(t, defaultWindow, rl.window)
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	assert.NotPanics(t, func() {
		rl.Close()
		rl.Close()
	})
}

func TestRateLimitMiddleware_Rejects(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, 10*time.Minute)
	next := &okHandler{}
	h := NewRateLimitMiddleware("test", rl, discardLogger()).Limit(next)

	before := testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("test"))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = "192.0.2.10:5123"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limit", body["code"])
	assert.Equal(t, "Too many requests. Please try again later.", body["error"])

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("test")))
}

func TestAuthRateLimiter_Limit(t *testing.T) {
	a := NewAuthRateLimiter(1, time.Minute, discardLogger())
	defer a.Close()

	h := a.Limit(&okHandler{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("X-Real-IP", "198.51.100.7")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.5:4000", nil, "203.0.113.5"},
		{"remote addr without port", "203.0.113.5", nil, "203.0.113.5"},
		{"forwarded for first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "198.51.100.2"},
		{"forwarded for wins", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.3", "X-Real-IP": "198.51.100.4"}, "198.51.100.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
