package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Gate {
	return NewGate([]string{"/dashboard", "/home"}, "/login", discardLogger())
}

func TestGate_Matches(t *testing.T) {
	g := newTestGate()

	tests := []struct {
		path string
		want bool
	}{
		{"/dashboard", true},
		{"/dashboard/", true},
		{"/dashboard/reports/1", true},
		{"/home", true},
		{"/home/settings", true},
		{"/dashboardx", false},
		{"/homepage", false},
		{"/", false},
		{"/login", false},
		{"/api/verify-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Matches(tt.path))
		})
	}
}

func TestGate_RedirectsWithoutCookie(t *testing.T) {
	next := &okHandler{}
	h := newTestGate().Handler(next)

	before := testutil.ToFloat64(metrics.GateRedirectsTotal)

	req := httptest.NewRequest(http.MethodGet, "http://app.example.com/dashboard/reports?month=5", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://app.example.com/login?month=5", rec.Header().Get("Location"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GateRedirectsTotal))
}

func TestGate_RedirectUsesHostHeader(t *testing.T) {
	h := newTestGate().Handler(&okHandler{})

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.Host = "estoque.local:8080"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://estoque.local:8080/login", rec.Header().Get("Location"))
}

func TestGate_EmptyCookieRedirects(t *testing.T) {
	next := &okHandler{}
	h := newTestGate().Handler(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Cookie", "auth_token=")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, next.called)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestGate_ForwardsAnyPresentCookie(t *testing.T) {
	next := &okHandler{}
	h := newTestGate().Handler(next)

	// The gate only checks presence; a garbage value still passes.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, next.called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestGate_UnmatchedPathBypasses(t *testing.T) {
	next := &okHandler{}
	h := newTestGate().Handler(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboardx", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewGate_CopiesAndNormalizesPrefixes(t *testing.T) {
	prefixes := []string{"/dashboard/", "home", " "}
	g := NewGate(prefixes, "/login", discardLogger())
	prefixes[0] = "/changed"

	assert.Equal(t, []string{"/dashboard", "/home"}, g.protected)
	assert.True(t, g.Matches("/dashboard/x"))
	assert.False(t, g.Matches("/changed"))
}
