// Package middleware contains HTTP middleware for the estoque service.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/estoque/internal/auth"
	"github.com/DukeRupert/estoque/internal/handler"
	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/session"
	"github.com/DukeRupert/estoque/internal/token"
)

// TokenDecoder verifies a session token. *token.Codec satisfies it.
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// AuthMiddleware decodes the session cookie and guards routes that need a
// verified user. Unlike the Gate it checks signature and expiry.
type AuthMiddleware struct {
	decoder   TokenDecoder
	cookies   *session.Writer
	loginPath string
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(decoder TokenDecoder, cookies *session.Writer, loginPath string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		decoder:   decoder,
		cookies:   cookies,
		loginPath: loginPath,
		logger:    logger,
	}
}

// WithUser decodes the auth_token cookie and stores the claims in the request
// context. Requests always continue; an undecodable cookie is expired on the
// response so the browser stops sending it.
//
// Flow:
//
//	Request -> WithUser -> Handler
//	           |
//	           +-> Read cookie
//	           +-> Decode token (if cookie exists)
//	           +-> Set claims in context (if valid)
//	           +-> Call next handler (always)
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := session.TokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.decoder.Decode(raw)
		if err != nil {
			metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			m.logger.Debug("discarding invalid session cookie", "path", r.URL.Path)
			m.cookies.Expire(w)
			next.ServeHTTP(w, r)
			return
		}

		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultValid).Inc()
		noteUser(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(auth.SetClaims(r.Context(), claims)))
	})
}

// RequireUser rejects requests without decoded claims: 401 JSON for API
// requests, a redirect to the login page otherwise.
//
// IMPORTANT: This middleware must be used AFTER WithUser in the middleware chain.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetClaims(r.Context()) == nil {
			if isAPIRequest(r) {
				handler.UnauthorizedResponse(w, r, m.logger)
				return
			}

			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, m.loginPath+"?return_to="+url.QueryEscape(returnTo), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAPIRequest reports whether the client expects a JSON response.
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// Stack composes middleware so that the first one is the outermost.
//
// Example:
//
//	stack := Stack(authMw.WithUser, authMw.RequireUser)
//	mux.Handle("GET /api/products", stack(listHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithUser
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireUser
)
