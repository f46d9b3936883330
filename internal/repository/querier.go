package repository

import (
	"context"

	"github.com/google/uuid"
)

type Querier interface {
	CountEntradas(ctx context.Context) (CountEntradasRow, error)
	CountProducts(ctx context.Context) (CountProductsRow, error)
	CreateAuthUser(ctx context.Context, arg CreateAuthUserParams) (AuthUser, error)
	CreateEntrada(ctx context.Context, arg CreateEntradaParams) (Entrada, error)
	CreatePerfil(ctx context.Context, arg CreatePerfilParams) (Perfil, error)
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	DeleteAuthUser(ctx context.Context, id uuid.UUID) error
	DeleteEntrada(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	GetAuthUserByEmail(ctx context.Context, email string) (AuthUser, error)
	GetEntradaByID(ctx context.Context, id uuid.UUID) (Entrada, error)
	GetPerfilByUserRef(ctx context.Context, userRef uuid.UUID) (Perfil, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListEntradas(ctx context.Context) ([]Entrada, error)
	ListPerfis(ctx context.Context) ([]Perfil, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateEntrada(ctx context.Context, arg UpdateEntradaParams) (Entrada, error)
	UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error)
}

var _ Querier = (*Queries)(nil)
