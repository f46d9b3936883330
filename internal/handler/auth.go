// Package handler contains the HTTP handlers of the estoque API.
//
// This file implements the session endpoints: combined login/register,
// login-only, logout, token verification and the development-only
// test-auth route.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/service"
	"github.com/DukeRupert/estoque/internal/session"
	"github.com/DukeRupert/estoque/internal/token"
	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// maxAuthBodyBytes caps the JSON bodies of the auth endpoints.
const maxAuthBodyBytes = 64 << 10

const (
	msgInvalidRequestType = "Invalid request type"
	msgInvalidRequestBody = "Invalid request body"
	msgUserNotFound       = "User not found"
	msgLoginFailed        = "Login failed"
	msgSignUpFailed       = "Sign up failed"
	msgUserIDRequired     = "userId is required"
	msgTokenNotFound      = "Token not found"
	msgTokenInvalid       = "Invalid or expired token"
	msgTokenValid         = "Token is valid"
)

// TokenCodec issues and verifies session tokens. *token.Codec satisfies it.
type TokenCodec interface {
	Issue(payload token.Payload) (string, error)
	Decode(raw string) (*token.Claims, error)
}

// AuthOptions toggles optional auth behaviour.
type AuthOptions struct {
	// RegisterRollback deletes the new account when its profile cannot be
	// created. When false the account is left in place and a warning logged.
	RegisterRollback bool

	// EnableTestAuth registers POST /api/test-auth, which signs a token for
	// any user id. Development only.
	EnableTestAuth bool
}

// AuthHandler handles the session endpoints.
//
// Routes handled:
// - POST /api/auth          -> Auth (login or register, by body type)
// - GET  /api/auth          -> VerifyCookie
// - POST /api/auth/login    -> Login
// - POST /api/auth/logout   -> Logout
// - GET  /api/verify-token  -> VerifyToken
// - POST /api/test-auth     -> TestAuth (development only)
type AuthHandler struct {
	identity service.IdentityService
	profiles service.ProfileService
	codec    TokenCodec
	cookies  *session.Writer
	logger   *slog.Logger
	opts     AuthOptions
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	identity service.IdentityService,
	profiles service.ProfileService,
	codec TokenCodec,
	cookies *session.Writer,
	logger *slog.Logger,
	opts AuthOptions,
) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		profiles: profiles,
		codec:    codec,
		cookies:  cookies,
		logger:   logger,
		opts:     opts,
	}
}

// =============================================================================
// Request and Response Types
// =============================================================================

// authRequest is the body of POST /api/auth.
type authRequest struct {
	Type     string `json:"type"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
}

// authResult is the body of every failed auth request. Successful requests
// answer {"success":true} through the session writer.
type authResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// tokenData is the decoded payload echoed by the verification endpoints.
type tokenData struct {
	UserID string `json:"userId"`
	Iat    int64  `json:"iat"`
	Exp    int64  `json:"exp"`
}

type verifyResponse struct {
	Message string    `json:"message"`
	Data    tokenData `json:"data"`
}

type verifyError struct {
	Error string `json:"error"`
}

// =============================================================================
// POST /api/auth - Login or Register
// =============================================================================

// Auth dispatches on the "type" field of the body: "login" answers 200 with
// the session cookie, "register" answers 201. Anything else is a 400.
func (h *AuthHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeJSON(w, r, maxAuthBodyBytes, &req); err != nil {
		writeAuthFailure(w, http.StatusBadRequest, msgInvalidRequestType)
		return
	}

	switch req.Type {
	case "login":
		h.login(w, r, req.Email, req.Password)
	case "register":
		h.register(w, r, req)
	default:
		writeAuthFailure(w, http.StatusBadRequest, msgInvalidRequestType)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, email, password string) {
	identity, err := h.identity.SignIn(r.Context(), email, password)
	if err != nil {
		h.identityFailure(w, r, err, metrics.LoginsTotal)
		return
	}
	if identity == nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		writeAuthFailure(w, http.StatusBadRequest, msgLoginFailed)
		return
	}

	h.issueAndAttach(w, r, identity.ID.String(), http.StatusOK, metrics.LoginsTotal)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, req authRequest) {
	ctx := r.Context()

	identity, err := h.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		h.identityFailure(w, r, err, metrics.RegistrationsTotal)
		return
	}
	if identity == nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		writeAuthFailure(w, http.StatusBadRequest, msgSignUpFailed)
		return
	}

	_, err = h.profiles.Create(ctx, domain.CreateProfileParams{
		UserRef:  identity.ID,
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Email:    identity.Email,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultProfileFailed).Inc()
		h.logger.Warn("profile creation failed after sign up",
			"user_id", identity.ID,
			"error", err,
			"rollback", h.opts.RegisterRollback,
		)
		if h.opts.RegisterRollback {
			h.rollbackIdentity(ctx, identity)
		}
		writeAuthFailure(w, http.StatusInternalServerError, domain.ErrorMessage(err))
		return
	}

	h.issueAndAttach(w, r, identity.ID.String(), http.StatusCreated, metrics.RegistrationsTotal)
}

// rollbackIdentity removes an account whose profile could not be created.
func (h *AuthHandler) rollbackIdentity(ctx context.Context, identity *domain.Identity) {
	if err := h.identity.Delete(context.WithoutCancel(ctx), identity.ID); err != nil {
		h.logger.Error("failed to roll back account", "user_id", identity.ID, "error", err)
		return
	}
	h.logger.Info("rolled back account without profile", "user_id", identity.ID)
}

// =============================================================================
// POST /api/auth/login - Login Only
// =============================================================================

// Login authenticates with {email, password}. Credential errors are 400; a
// sign in that yields no account is 404.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, maxAuthBodyBytes, &req); err != nil {
		writeAuthFailure(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	identity, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.identityFailure(w, r, err, metrics.LoginsTotal)
		return
	}
	if identity == nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		writeAuthFailure(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	h.issueAndAttach(w, r, identity.ID.String(), http.StatusOK, metrics.LoginsTotal)
}

// =============================================================================
// POST /api/auth/logout - Logout
// =============================================================================

// Logout expires the session cookie. Tokens are stateless, so nothing is
// revoked server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
}

// =============================================================================
// POST /api/test-auth - Development Token
// =============================================================================

// TestAuth signs a token for the given userId without checking credentials.
func (h *AuthHandler) TestAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(w, r, maxAuthBodyBytes, &req); err != nil {
		writeAuthFailure(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeAuthFailure(w, http.StatusBadRequest, msgUserIDRequired)
		return
	}

	h.logger.Warn("issuing test token", "user_id", req.UserID)

	raw, err := h.codec.Issue(token.Payload{UserID: req.UserID})
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, "auth.test", "failed to sign token"))
		return
	}
	h.cookies.Attach(w, http.StatusOK, raw)
}

// =============================================================================
// GET /api/verify-token - Token Verification
// =============================================================================

// VerifyToken reads auth_token from the raw Cookie header and reports whether
// it is valid.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	h.verify(w, session.TokenFromHeader(r.Header.Get("Cookie")))
}

// VerifyCookie is VerifyToken reading the cookie through the parsed cookie
// jar instead of the raw header.
func (h *AuthHandler) VerifyCookie(w http.ResponseWriter, r *http.Request) {
	h.verify(w, session.TokenFromRequest(r))
}

func (h *AuthHandler) verify(w http.ResponseWriter, raw string) {
	if raw == "" {
		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultMissing).Inc()
		writeJSON(w, http.StatusUnauthorized, verifyError{Error: msgTokenNotFound})
		return
	}

	claims, err := h.codec.Decode(raw)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeJSON(w, http.StatusUnauthorized, verifyError{Error: msgTokenInvalid})
		return
	}

	metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultValid).Inc()
	writeJSON(w, http.StatusOK, verifyResponse{
		Message: msgTokenValid,
		Data:    claimsToData(claims),
	})
}

func claimsToData(c *token.Claims) tokenData {
	data := tokenData{UserID: c.UserID}
	if c.IssuedAt != nil {
		data.Iat = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		data.Exp = c.ExpiresAt.Unix()
	}
	return data
}

// =============================================================================
// Helpers
// =============================================================================

// issueAndAttach signs a token for userID and sets the session cookie.
func (h *AuthHandler) issueAndAttach(w http.ResponseWriter, r *http.Request, userID string, status int, outcome *prometheus.CounterVec) {
	raw, err := h.codec.Issue(token.Payload{UserID: userID})
	if err != nil {
		outcome.WithLabelValues(metrics.ResultError).Inc()
		ErrorResponse(w, r, h.logger, domain.Internal(err, "auth.issue", "failed to sign token"))
		return
	}

	outcome.WithLabelValues(metrics.ResultSuccess).Inc()
	h.cookies.Attach(w, status, raw)
}

// identityFailure answers a failed sign in or sign up. Internal failures get
// the generic 500 message; everything else is a 400 carrying the message.
func (h *AuthHandler) identityFailure(w http.ResponseWriter, r *http.Request, err error, outcome *prometheus.CounterVec) {
	if domain.ErrorCode(err) == domain.EINTERNAL {
		outcome.WithLabelValues(metrics.ResultError).Inc()
		logError(h.logger, r, err, domain.EINTERNAL, domain.ErrorOp(err), http.StatusInternalServerError)
		writeAuthFailure(w, http.StatusInternalServerError, domain.ErrorMessage(err))
		return
	}

	outcome.WithLabelValues(metrics.ResultRejected).Inc()
	var de *domain.Error
	if errors.As(err, &de) {
		h.logger.Info("auth rejected", "code", de.Code, "op", de.Op, "path", r.URL.Path)
	}
	writeAuthFailure(w, http.StatusBadRequest, domain.ErrorMessage(err))
}

func writeAuthFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, authResult{Success: false, Message: message})
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers the auth routes. limit wraps the credential
// endpoints (login and register) with rate limiting; pass nil to disable.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("POST /api/auth", limit(http.HandlerFunc(h.Auth)))
	mux.HandleFunc("GET /api/auth", h.VerifyCookie)
	mux.Handle("POST /api/auth/login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/verify-token", h.VerifyToken)

	if h.opts.EnableTestAuth {
		mux.HandleFunc("POST /api/test-auth", h.TestAuth)
	}
}
