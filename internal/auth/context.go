// Package auth provides request context helpers for the decoded session.
//
// This package is imported by both middleware and handler packages without
// causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/estoque/internal/token"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaims returns the decoded session claims, or nil when the request
// carried no valid token.
func GetClaims(ctx context.Context) *token.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetClaimsFromRequest is GetClaims on the request context.
func GetClaimsFromRequest(r *http.Request) *token.Claims {
	return GetClaims(r.Context())
}

// SetClaims stores decoded claims in the context.
func SetClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// UserID returns the user id of the session, or "" when there is none.
func UserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
