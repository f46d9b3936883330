package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProfileService manages the perfil records linked to accounts.
type ProfileService interface {
	// Create inserts the profile of a freshly registered account.
	// Returns domain.EINVALID when nome is blank.
	Create(ctx context.Context, params domain.CreateProfileParams) (*domain.Profile, error)

	// Get returns the profile of an account.
	// Returns domain.ENOTFOUND when none exists.
	Get(ctx context.Context, userRef uuid.UUID) (*domain.Profile, error)

	// List returns every profile ordered by nome.
	List(ctx context.Context) ([]domain.Profile, error)
}

type profileService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(queries repository.Querier, logger *slog.Logger) ProfileService {
	return &profileService{
		queries: queries,
		logger:  logger,
	}
}

func (s *profileService) Create(ctx context.Context, params domain.CreateProfileParams) (*domain.Profile, error) {
	const op = "profile.create"

	nome := titleName(params.Nome)
	if nome == "" {
		return nil, domain.Invalid(op, "Nome is required")
	}

	row, err := s.queries.CreatePerfil(ctx, repository.CreatePerfilParams{
		UserRef:  params.UserRef,
		Nome:     nome,
		Telefone: domain.ToNullString(strings.TrimSpace(params.Telefone)),
		Email:    normalizeEmail(params.Email),
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "Profile already exists")
		}
		return nil, domain.Internal(err, op, "failed to create profile")
	}

	return perfilToDomain(row), nil
}

func (s *profileService) Get(ctx context.Context, userRef uuid.UUID) (*domain.Profile, error) {
	const op = "profile.get"

	row, err := s.queries.GetPerfilByUserRef(ctx, userRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "profile", userRef.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch profile")
	}
	return perfilToDomain(row), nil
}

func (s *profileService) List(ctx context.Context) ([]domain.Profile, error) {
	const op = "profile.list"

	rows, err := s.queries.ListPerfis(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list profiles")
	}

	profiles := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, *perfilToDomain(row))
	}
	return profiles, nil
}

func perfilToDomain(row repository.Perfil) *domain.Profile {
	return &domain.Profile{
		UserRef:   row.UserRef,
		Nome:      row.Nome,
		Telefone:  domain.NullStringValue(row.Telefone),
		Email:     row.Email,
		AvatarURL: domain.NullStringValue(row.AvatarUrl),
		CreatedAt: row.CreatedAt,
	}
}

// titleName collapses whitespace and title-cases a person or product name.
// A Caser is stateful, so one is built per call.
func titleName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(name)
}
