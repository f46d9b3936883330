package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/products", "/api/products"},
		{"/api/products/123e4567-e89b-12d3-a456-426614174000", "/api/products/{id}"},
		{"/dashboard", "/dashboard"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in))
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/products/123e4567-e89b-12d3-a456-426614174000", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
