package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/google/uuid"
)

// EntradaService manages financial entries.
type EntradaService interface {
	// List returns all entradas, earliest due date first.
	List(ctx context.Context) ([]domain.Entrada, error)

	// Create inserts an entrada. Returns domain.EINVALID for validation errors.
	Create(ctx context.Context, params domain.CreateEntradaParams) (*domain.Entrada, error)

	// Update applies a partial update.
	// Returns domain.ENOTFOUND if the entrada doesn't exist.
	Update(ctx context.Context, params domain.UpdateEntradaParams) (*domain.Entrada, error)

	// Delete removes an entrada.
	// Returns domain.ENOTFOUND if the entrada doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Summary aggregates entradas for the dashboard.
	Summary(ctx context.Context) (*domain.EntradaSummary, error)
}

type entradaService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewEntradaService creates an EntradaService.
func NewEntradaService(queries repository.Querier, logger *slog.Logger) EntradaService {
	return &entradaService{
		queries: queries,
		logger:  logger,
	}
}

func (s *entradaService) List(ctx context.Context) ([]domain.Entrada, error) {
	const op = "entrada.list"

	rows, err := s.queries.ListEntradas(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list entradas")
	}

	entradas := make([]domain.Entrada, 0, len(rows))
	for _, row := range rows {
		entradas = append(entradas, *entradaToDomain(row))
	}
	return entradas, nil
}

func (s *entradaService) Create(ctx context.Context, params domain.CreateEntradaParams) (*domain.Entrada, error) {
	const op = "entrada.create"

	nome := strings.TrimSpace(params.Nome)
	if nome == "" {
		return nil, domain.NewValidationError(op, "nome", "Nome is required")
	}
	if !validPreco(params.Preco) {
		return nil, domain.NewValidationError(op, "preco", "Preco must be zero or greater")
	}

	row, err := s.queries.CreateEntrada(ctx, repository.CreateEntradaParams{
		Nome:      nome,
		Categoria: domain.ToNullString(strings.TrimSpace(params.Categoria)),
		Preco:     params.Preco,
		DataVenc:  dateToNull(params.DataVenc),
		DataPag:   dateToNull(params.DataPag),
		UserRef:   domain.ToNullUUID(params.UserRef),
		ImageUrl:  domain.ToNullString(strings.TrimSpace(params.ImageURL)),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create entrada")
	}

	metrics.EntradasCreated.Inc()
	return entradaToDomain(row), nil
}

func (s *entradaService) Update(ctx context.Context, params domain.UpdateEntradaParams) (*domain.Entrada, error) {
	const op = "entrada.update"

	if params.ID == uuid.Nil {
		return nil, domain.NewValidationError(op, "id", "ID is required")
	}

	arg := repository.UpdateEntradaParams{
		ID:       params.ID,
		DataVenc: dateToNull(params.DataVenc),
		DataPag:  dateToNull(params.DataPag),
	}
	if params.Nome != nil {
		nome := strings.TrimSpace(*params.Nome)
		if nome == "" {
			return nil, domain.NewValidationError(op, "nome", "Nome is required")
		}
		arg.Nome = sql.NullString{String: nome, Valid: true}
	}
	if params.Categoria != nil {
		arg.Categoria = sql.NullString{String: strings.TrimSpace(*params.Categoria), Valid: true}
	}
	if params.Preco != nil {
		if !validPreco(*params.Preco) {
			return nil, domain.NewValidationError(op, "preco", "Preco must be zero or greater")
		}
		arg.Preco = sql.NullFloat64{Float64: *params.Preco, Valid: true}
	}
	if params.ImageURL != nil {
		arg.ImageUrl = sql.NullString{String: strings.TrimSpace(*params.ImageURL), Valid: true}
	}

	row, err := s.queries.UpdateEntrada(ctx, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "entrada", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update entrada")
	}
	return entradaToDomain(row), nil
}

func (s *entradaService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "entrada.delete"

	if id == uuid.Nil {
		return domain.NewValidationError(op, "deleteId", "deleteId is required")
	}

	affected, err := s.queries.DeleteEntrada(ctx, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete entrada")
	}
	if affected == 0 {
		return domain.NotFound(op, "entrada", id.String())
	}

	s.logger.Info("entrada deleted", "entrada_id", id)
	return nil
}

func (s *entradaService) Summary(ctx context.Context) (*domain.EntradaSummary, error) {
	const op = "entrada.summary"

	row, err := s.queries.CountEntradas(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to summarize entradas")
	}
	return &domain.EntradaSummary{
		Count:     row.Count,
		Total:     row.Total,
		Pendentes: row.Pendentes,
	}, nil
}

func validPreco(preco float64) bool {
	return !math.IsNaN(preco) && !math.IsInf(preco, 0) && preco >= 0
}

func dateToNull(d *domain.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func nullToDate(nt sql.NullTime) *domain.Date {
	if !nt.Valid {
		return nil
	}
	d := domain.NewDate(nt.Time)
	return &d
}

func nullToUUID(nu uuid.NullUUID) *uuid.UUID {
	if !nu.Valid {
		return nil
	}
	id := nu.UUID
	return &id
}

func entradaToDomain(row repository.Entrada) *domain.Entrada {
	return &domain.Entrada{
		ID:        row.ID,
		Nome:      row.Nome,
		Categoria: domain.NullStringValue(row.Categoria),
		Preco:     row.Preco,
		DataVenc:  nullToDate(row.DataVenc),
		DataPag:   nullToDate(row.DataPag),
		UserRef:   nullToUUID(row.UserRef),
		ImageURL:  domain.NullStringValue(row.ImageUrl),
		CreatedAt: row.CreatedAt,
	}
}
