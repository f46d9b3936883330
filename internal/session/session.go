// Package session owns the auth_token cookie: its name, its attributes and
// the helpers that write, clear and read it. Both the handler and middleware
// packages import it, so it must not import either.
package session

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	// CookieName is the name of the cookie that carries the signed token.
	CookieName = "auth_token"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge matches the token lifetime (1 day = 86400 seconds).
	CookieMaxAge = 24 * 60 * 60
)

// Writer serializes tokens into Set-Cookie directives.
type Writer struct {
	secure bool
}

// NewWriter returns a Writer. secure controls the Secure attribute and should
// be true everywhere except local development over plain HTTP.
func NewWriter(secure bool) *Writer {
	return &Writer{secure: secure}
}

// Secure reports whether cookies are written with the Secure attribute.
func (cw *Writer) Secure() bool {
	return cw.secure
}

// Attach sets the session cookie to token and writes {"success":true} with
// the given status. The token is not inspected.
func (cw *Writer) Attach(w http.ResponseWriter, status int, token string) {
	http.SetCookie(w, cw.cookie(token, CookieMaxAge))
	writeSuccess(w, status)
}

// Clear expires the session cookie on the client and writes {"success":true}.
func (cw *Writer) Clear(w http.ResponseWriter) {
	cw.Expire(w)
	writeSuccess(w, http.StatusOK)
}

// Expire adds a Set-Cookie directive that drops the session cookie without
// writing a body, for callers that render their own response.
func (cw *Writer) Expire(w http.ResponseWriter) {
	// MaxAge < 0 is serialized by net/http as "Max-Age=0".
	http.SetCookie(w, cw.cookie("", -1))
}

func (cw *Writer) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cw.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func writeSuccess(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// TokenFromHeader extracts the session token from a raw Cookie header value.
// It scans the ';'-separated pairs for the one starting with "auth_token="
// and returns the text after the first '='. Returns "" when absent.
func TokenFromHeader(raw string) string {
	for _, row := range strings.Split(raw, ";") {
		row = strings.TrimSpace(row)
		if !strings.HasPrefix(row, CookieName+"=") {
			continue
		}
		parts := strings.Split(row, "=")
		return parts[1]
	}
	return ""
}

// TokenFromRequest returns the session token using the structured cookie API.
// Returns "" when the cookie is missing or empty.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
