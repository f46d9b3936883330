package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/estoque/internal/auth"
)

// quietPrefixes are polled by probes and browsers often enough that logging
// them drowns out API traffic.
var quietPrefixes = []string{"/health", "/metrics", "/files/"}

// redactedParams are query parameters whose values never reach the logs.
var redactedParams = map[string]bool{
	"token":         true,
	"auth_token":    true,
	"access_token":  true,
	"refresh_token": true,
	"code":          true,
	"key":           true,
	"api_key":       true,
	"apikey":        true,
	"secret":        true,
	"password":      true,
}

// RequestLoggingMiddleware writes one log line per request.
type RequestLoggingMiddleware struct {
	logger *slog.Logger
}

// NewRequestLoggingMiddleware creates a new request logging middleware.
func NewRequestLoggingMiddleware(logger *slog.Logger) *RequestLoggingMiddleware {
	return &RequestLoggingMiddleware{logger: logger}
}

// requestLog collects fields that inner middleware learn after the logger
// has already wrapped the request.
type requestLog struct {
	userID string
}

type requestLogKey struct{}

// noteUser records the verified user on the request log line, if any.
func noteUser(ctx context.Context, userID string) {
	if rl, ok := ctx.Value(requestLogKey{}).(*requestLog); ok {
		rl.userID = userID
	}
}

// Handler logs method, sanitized path, status, latency and the verified user.
// Responses with a 5xx status are logged at WARN.
func (m *RequestLoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := &requestLog{}
		if claims := auth.GetClaims(r.Context()); claims != nil {
			entry.userID = claims.UserID
		}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestLogKey{}, entry)))

		attrs := []any{
			"method", r.Method,
			"path", sanitizePath(r.URL.Path, r.URL.RawQuery),
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", getClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if entry.userID != "" {
			attrs = append(attrs, "user_id", entry.userID)
		}

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		m.logger.Log(r.Context(), level, "request", attrs...)
	})
}

func isQuietPath(path string) bool {
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// sanitizePath rebuilds path and query with sensitive values redacted.
// Parameters without a value are dropped.
func sanitizePath(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}

	var kept []string
	for _, part := range strings.Split(rawQuery, "&") {
		name, _, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if redactedParams[strings.ToLower(name)] {
			part = name + "=[REDACTED]"
		}
		kept = append(kept, part)
	}

	if len(kept) == 0 {
		return path
	}
	return path + "?" + strings.Join(kept, "&")
}
