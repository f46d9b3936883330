// Package service contains the business logic layer.
//
// Services orchestrate interactions between the repository, object storage
// and domain logic. They validate input, enforce business rules and translate
// database errors into domain errors.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	BcryptCost = 12

	// MinPasswordLength is the minimum password length accepted at sign up.
	MinPasswordLength = 6

	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72

	// MaxEmailLength is the RFC 5321 path limit.
	MaxEmailLength = 254
)

// Messages returned to clients by the identity collaborator. The auth handler
// relays them verbatim.
const (
	msgInvalidCredentials = "Invalid login credentials"
	msgAlreadyRegistered  = "User already registered"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// =============================================================================
// Interface Definition
// =============================================================================

// IdentityService holds email/password accounts.
type IdentityService interface {
	// SignUp creates an account.
	// Returns domain.EINVALID for validation errors and domain.ECONFLICT when
	// the email is taken.
	SignUp(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignIn checks credentials and returns the account.
	// Returns domain.EINVALID for unknown emails and wrong passwords alike.
	SignIn(ctx context.Context, email, password string) (*domain.Identity, error)

	// Delete removes an account. Deleting a missing account is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

type identityService struct {
	queries repository.Querier
	cost    int
	logger  *slog.Logger
}

// NewIdentityService creates an IdentityService backed by the auth_users table.
func NewIdentityService(queries repository.Querier, logger *slog.Logger) IdentityService {
	return &identityService{
		queries: queries,
		cost:    BcryptCost,
		logger:  logger,
	}
}

func (s *identityService) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	const op = "identity.signup"

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, withOp(err, op)
	}
	if err := validatePassword(password); err != nil {
		return nil, withOp(err, op)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	row, err := s.queries.CreateAuthUser(ctx, repository.CreateAuthUserParams{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, msgAlreadyRegistered)
		}
		return nil, domain.Internal(err, op, "failed to create account")
	}

	s.logger.Info("account created", "user_id", row.ID)

	identity := authUserToDomain(row)
	return identity, nil
}

func (s *identityService) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	const op = "identity.signin"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid(op, msgInvalidCredentials)
	}

	row, err := s.queries.GetAuthUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.Invalid(op, msgInvalidCredentials)
		}
		return nil, domain.Internal(err, op, "failed to retrieve account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Invalid(op, msgInvalidCredentials)
	}

	return authUserToDomain(row), nil
}

func (s *identityService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "identity.delete"

	if err := s.queries.DeleteAuthUser(ctx, id); err != nil {
		return domain.Internal(err, op, "failed to delete account")
	}
	s.logger.Info("account deleted", "user_id", id)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func authUserToDomain(row repository.AuthUser) *domain.Identity {
	return &domain.Identity{
		ID:        row.ID,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail performs a structural check: one @, a non-empty local part
// and a dotted domain.
func validateEmail(email string) error {
	if email == "" {
		return domain.Invalid("", "Email is required")
	}
	if len(email) > MaxEmailLength {
		return domain.Invalid("", "Email must be 254 characters or less")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return domain.Invalid("", "Email must not contain whitespace")
	}

	local, host, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(host, "@") {
		return domain.Invalid("", "Email must contain exactly one @ symbol")
	}
	if local == "" || host == "" {
		return domain.Invalid("", "Email is invalid")
	}
	dot := strings.LastIndex(host, ".")
	if dot <= 0 || dot == len(host)-1 {
		return domain.Invalid("", "Email domain is invalid")
	}
	return nil
}

// validatePassword enforces the length bounds only.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.Invalid("", "Password should be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return domain.Invalid("", "Password must be 72 bytes or less")
	}
	return nil
}

// withOp sets the operation on a domain error produced by a helper.
func withOp(err error, op string) error {
	var e *domain.Error
	if errors.As(err, &e) && e.Op == "" {
		e.Op = op
	}
	return err
}
