package middleware

import (
	"crypto/subtle"
	"net/http"
)

// MetricsAuthMiddleware puts HTTP basic auth in front of the Prometheus
// scrape endpoint. With no credentials configured it lets everything through.
type MetricsAuthMiddleware struct {
	username []byte
	password []byte
}

// NewMetricsAuthMiddleware creates a new metrics auth middleware.
func NewMetricsAuthMiddleware(username, password string) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{
		username: []byte(username),
		password: []byte(password),
	}
}

// Enabled reports whether credentials are required.
func (m *MetricsAuthMiddleware) Enabled() bool {
	return len(m.username) > 0 || len(m.password) > 0
}

func (m *MetricsAuthMiddleware) authorized(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	// Both comparisons always run.
	userOK := subtle.ConstantTimeCompare([]byte(user), m.username)
	passOK := subtle.ConstantTimeCompare([]byte(pass), m.password)
	return userOK&passOK == 1
}

// Handler returns middleware enforcing the credentials.
func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
