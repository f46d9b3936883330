package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/estoque/internal/auth"
	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/service"
)

// DashboardHandler renders the inventory and finance summary behind the
// request gate.
type DashboardHandler struct {
	products service.ProductService
	entradas service.EntradaService
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(products service.ProductService, entradas service.EntradaService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		products: products,
		entradas: entradas,
		logger:   logger,
	}
}

type dashboardResponse struct {
	UserID     string                 `json:"userId"`
	Products   *domain.ProductSummary `json:"products"`
	Entradas   *domain.EntradaSummary `json:"entradas"`
	TotalPreco float64                `json:"total_preco"`
}

// Show handles GET /dashboard. total_preco is the stock value, the sum of
// preco * quantidade over all products.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.Summary(ctx)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	entradas, err := h.entradas.Summary(ctx)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		UserID:     auth.UserID(ctx),
		Products:   products,
		Entradas:   entradas,
		TotalPreco: products.ValorTotal,
	})
}

// RegisterRoutes registers GET /dashboard behind protect.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /dashboard", protect(http.HandlerFunc(h.Show)))
}
