package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/session"
)

// Gate keeps anonymous visitors away from protected pages.
//
// It only checks that an auth_token cookie is present and non-empty. It holds
// no codec and never verifies signatures or expiry, so a garbage cookie gets
// through; pages behind it must rely on AuthMiddleware or the verification
// endpoint for real checks.
type Gate struct {
	protected []string
	loginPath string
	logger    *slog.Logger
}

// NewGate creates a Gate for the given path prefixes. The prefixes are copied
// and cannot change afterwards.
func NewGate(protected []string, loginPath string, logger *slog.Logger) *Gate {
	prefixes := make([]string, 0, len(protected))
	for _, p := range protected {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		prefixes = append(prefixes, p)
	}

	return &Gate{
		protected: prefixes,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Matches reports whether path falls under a protected prefix: the prefix
// itself or anything below "prefix/". "/dashboardx" does not match "/dashboard".
func (g *Gate) Matches(path string) bool {
	for _, p := range g.protected {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Handler returns the gate middleware.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Matches(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if session.TokenFromRequest(r) != "" {
			g.logger.Debug("gate: session cookie present", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		g.logger.Debug("gate: no session cookie, redirecting", "path", r.URL.Path)
		metrics.GateRedirectsTotal.Inc()
		http.Redirect(w, r, g.loginURL(r), http.StatusTemporaryRedirect)
	})
}

// loginURL clones the request URL, keeping scheme, host and query, and
// swaps the path for the login path.
func (g *Gate) loginURL(r *http.Request) string {
	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
			u.Scheme = "https"
		}
	}
	u.Path = g.loginPath
	u.RawPath = ""
	u.Fragment = ""
	return u.String()
}
