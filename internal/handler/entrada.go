package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/estoque/internal/auth"
	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/service"
	"github.com/google/uuid"
)

// entradaAllowedMethods is sent in the Allow header of 405 responses.
const entradaAllowedMethods = "GET, POST, PUT, DELETE"

// EntradaHandler serves /api/entradas, dispatching on the request method.
//
//   - GET    -> list (200)
//   - POST   -> create (201)
//   - PUT    -> partial update of the entrada named by "id" (200)
//   - DELETE -> delete the entrada named by "deleteId" (204)
type EntradaHandler struct {
	entradas service.EntradaService
	logger   *slog.Logger
}

// NewEntradaHandler creates a new EntradaHandler.
func NewEntradaHandler(entradas service.EntradaService, logger *slog.Logger) *EntradaHandler {
	return &EntradaHandler{
		entradas: entradas,
		logger:   logger,
	}
}

type createEntradaRequest struct {
	Nome      string       `json:"nome"`
	Categoria string       `json:"categoria"`
	Preco     float64      `json:"preco"`
	DataVenc  *domain.Date `json:"data_venc"`
	DataPag   *domain.Date `json:"data_pag"`
	UserRef   *uuid.UUID   `json:"user_ref"`
	ImageURL  string       `json:"image_url"`
}

// updateEntradaRequest uses pointers so absent fields stay untouched.
type updateEntradaRequest struct {
	ID        uuid.UUID    `json:"id"`
	Nome      *string      `json:"nome"`
	Categoria *string      `json:"categoria"`
	Preco     *float64     `json:"preco"`
	DataVenc  *domain.Date `json:"data_venc"`
	DataPag   *domain.Date `json:"data_pag"`
	ImageURL  *string      `json:"image_url"`
}

type deleteEntradaRequest struct {
	DeleteID uuid.UUID `json:"deleteId"`
}

// ServeHTTP dispatches on r.Method.
func (h *EntradaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.Header().Set("Allow", entradaAllowedMethods)
		ErrorResponse(w, r, h.logger,
			domain.Errorf(domain.EMETHOD, "entrada", "Method %s Not Allowed", r.Method))
	}
}

func (h *EntradaHandler) list(w http.ResponseWriter, r *http.Request) {
	entradas, err := h.entradas.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entradas)
}

func (h *EntradaHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "entrada.create"

	var req createEntradaRequest
	if err := decodeJSON(w, r, maxJSONBodyBytes, &req); err != nil {
		ErrorResponse(w, r, h.logger, bodyError(err, op))
		return
	}

	userRef := req.UserRef
	if userRef == nil {
		userRef = requestUserRef(r)
	}

	entrada, err := h.entradas.Create(r.Context(), domain.CreateEntradaParams{
		Nome:      req.Nome,
		Categoria: req.Categoria,
		Preco:     req.Preco,
		DataVenc:  req.DataVenc,
		DataPag:   req.DataPag,
		UserRef:   userRef,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entrada)
}

func (h *EntradaHandler) update(w http.ResponseWriter, r *http.Request) {
	const op = "entrada.update"

	var req updateEntradaRequest
	if err := decodeJSON(w, r, maxJSONBodyBytes, &req); err != nil {
		ErrorResponse(w, r, h.logger, bodyError(err, op))
		return
	}

	params := domain.UpdateEntradaParams{
		ID:        req.ID,
		Nome:      req.Nome,
		Categoria: req.Categoria,
		Preco:     req.Preco,
		DataVenc:  req.DataVenc,
		DataPag:   req.DataPag,
		ImageURL:  req.ImageURL,
	}
	if req.ID != uuid.Nil && params.IsEmpty() {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No fields to update"))
		return
	}

	entrada, err := h.entradas.Update(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entrada)
}

func (h *EntradaHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req deleteEntradaRequest
	if err := decodeJSON(w, r, maxJSONBodyBytes, &req); err != nil {
		ErrorResponse(w, r, h.logger, bodyError(err, "entrada.delete"))
		return
	}

	if err := h.entradas.Delete(r.Context(), req.DeleteID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestUserRef returns the authenticated user's id when it is a UUID.
// Tokens from test-auth may carry arbitrary ids; those leave user_ref empty.
func requestUserRef(r *http.Request) *uuid.UUID {
	id, err := uuid.Parse(auth.UserID(r.Context()))
	if err != nil {
		return nil
	}
	return &id
}

// RegisterRoutes registers /api/entradas behind protect. The pattern carries
// no method so that unsupported methods reach ServeHTTP and get the 405.
func (h *EntradaHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("/api/entradas", protect(h))
}
