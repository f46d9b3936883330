package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/service"
)

// UserHandler lists registered users.
type UserHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(profiles service.ProfileService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		logger:   logger,
	}
}

type usersResponse struct {
	Users []domain.UserSummary `json:"users"`
}

// List handles GET /api/users: every profile, ordered by nome, reduced to
// {id, nome, email, avatar_url}.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	users := make([]domain.UserSummary, 0, len(profiles))
	for i := range profiles {
		users = append(users, profiles[i].Summary())
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// RegisterRoutes registers the user routes behind protect.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/users", protect(http.HandlerFunc(h.List)))
}
