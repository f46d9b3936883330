package handler

import (
	"context"
	"errors"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/token"
	"github.com/google/uuid"
)

// =============================================================================
// Mock IdentityService
// =============================================================================

type mockIdentityService struct {
	SignUpFunc func(ctx context.Context, email, password string) (*domain.Identity, error)
	SignInFunc func(ctx context.Context, email, password string) (*domain.Identity, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error

	deleted []uuid.UUID
}

func (m *mockIdentityService) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password)
	}
	return nil, errors.New("SignUpFunc not implemented")
}

func (m *mockIdentityService) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, errors.New("SignInFunc not implemented")
}

func (m *mockIdentityService) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// =============================================================================
// Mock ProfileService
// =============================================================================

type mockProfileService struct {
	CreateFunc func(ctx context.Context, params domain.CreateProfileParams) (*domain.Profile, error)
	GetFunc    func(ctx context.Context, userRef uuid.UUID) (*domain.Profile, error)
	ListFunc   func(ctx context.Context) ([]domain.Profile, error)
}

func (m *mockProfileService) Create(ctx context.Context, params domain.CreateProfileParams) (*domain.Profile, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *mockProfileService) Get(ctx context.Context, userRef uuid.UUID) (*domain.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userRef)
	}
	return nil, errors.New("GetFunc not implemented")
}

func (m *mockProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

// =============================================================================
// Mock ProductService
// =============================================================================

type mockProductService struct {
	ListFunc    func(ctx context.Context) ([]domain.Product, error)
	GetFunc     func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateFunc  func(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error)
	UpdateFunc  func(ctx context.Context, params domain.UpdateProductParams) (*domain.Product, error)
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	SummaryFunc func(ctx context.Context) (*domain.ProductSummary, error)
}

func (m *mockProductService) List(ctx context.Context) ([]domain.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errors.New("GetFunc not implemented")
}

func (m *mockProductService) Create(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *mockProductService) Update(ctx context.Context, params domain.UpdateProductParams) (*domain.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, params)
	}
	return nil, errors.New("UpdateFunc not implemented")
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}

func (m *mockProductService) Summary(ctx context.Context) (*domain.ProductSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return nil, errors.New("SummaryFunc not implemented")
}

// =============================================================================
// Mock EntradaService
// =============================================================================

type mockEntradaService struct {
	ListFunc    func(ctx context.Context) ([]domain.Entrada, error)
	CreateFunc  func(ctx context.Context, params domain.CreateEntradaParams) (*domain.Entrada, error)
	UpdateFunc  func(ctx context.Context, params domain.UpdateEntradaParams) (*domain.Entrada, error)
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	SummaryFunc func(ctx context.Context) (*domain.EntradaSummary, error)
}

func (m *mockEntradaService) List(ctx context.Context) ([]domain.Entrada, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockEntradaService) Create(ctx context.Context, params domain.CreateEntradaParams) (*domain.Entrada, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *mockEntradaService) Update(ctx context.Context, params domain.UpdateEntradaParams) (*domain.Entrada, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, params)
	}
	return nil, errors.New("UpdateFunc not implemented")
}

func (m *mockEntradaService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}

func (m *mockEntradaService) Summary(ctx context.Context) (*domain.EntradaSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return nil, errors.New("SummaryFunc not implemented")
}

// =============================================================================
// Failing codec
// =============================================================================

// brokenCodec fails to sign, for the internal-error paths.
type brokenCodec struct{}

func (brokenCodec) Issue(token.Payload) (string, error) {
	return "", errors.New("signing key unavailable")
}

func (brokenCodec) Decode(string) (*token.Claims, error) {
	return nil, token.ErrInvalidToken
}
