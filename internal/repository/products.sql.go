package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const listProducts = `-- name: ListProducts :many
SELECT id, nome, preco::float8, quantidade, image_key, image_url, thumbnail_key, thumbnail_url, created_at, updated_at
FROM products
ORDER BY nome ASC, created_at DESC
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := scanProduct(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getProductByID = `-- name: GetProductByID :one
SELECT id, nome, preco::float8, quantidade, image_key, image_url, thumbnail_key, thumbnail_url, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductByID, id)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (nome, preco, quantidade, image_key, image_url, thumbnail_key, thumbnail_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, nome, preco::float8, quantidade, image_key, image_url, thumbnail_key, thumbnail_url, created_at, updated_at
`

type CreateProductParams struct {
	Nome         string
	Preco        float64
	Quantidade   int32
	ImageKey     sql.NullString
	ImageUrl     sql.NullString
	ThumbnailKey sql.NullString
	ThumbnailUrl sql.NullString
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, createProduct,
		arg.Nome,
		arg.Preco,
		arg.Quantidade,
		arg.ImageKey,
		arg.ImageUrl,
		arg.ThumbnailKey,
		arg.ThumbnailUrl,
	)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET nome = $2,
    preco = $3,
    quantidade = $4,
    image_key = $5,
    image_url = $6,
    thumbnail_key = $7,
    thumbnail_url = $8,
    updated_at = NOW()
WHERE id = $1
RETURNING id, nome, preco::float8, quantidade, image_key, image_url, thumbnail_key, thumbnail_url, created_at, updated_at
`

type UpdateProductParams struct {
	ID           uuid.UUID
	Nome         string
	Preco        float64
	Quantidade   int32
	ImageKey     sql.NullString
	ImageUrl     sql.NullString
	ThumbnailKey sql.NullString
	ThumbnailUrl sql.NullString
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, updateProduct,
		arg.ID,
		arg.Nome,
		arg.Preco,
		arg.Quantidade,
		arg.ImageKey,
		arg.ImageUrl,
		arg.ThumbnailKey,
		arg.ThumbnailUrl,
	)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const deleteProduct = `-- name: DeleteProduct :execrows
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*)::bigint AS count,
       COALESCE(SUM(quantidade), 0)::bigint AS unidades,
       COALESCE(SUM(preco * quantidade), 0)::float8 AS valor_total
FROM products
`

type CountProductsRow struct {
	Count      int64
	Unidades   int64
	ValorTotal float64
}

func (q *Queries) CountProducts(ctx context.Context) (CountProductsRow, error) {
	row := q.db.QueryRowContext(ctx, countProducts)
	var i CountProductsRow
	err := row.Scan(&i.Count, &i.Unidades, &i.ValorTotal)
	return i, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s scanner, i *Product) error {
	return s.Scan(
		&i.ID,
		&i.Nome,
		&i.Preco,
		&i.Quantidade,
		&i.ImageKey,
		&i.ImageUrl,
		&i.ThumbnailKey,
		&i.ThumbnailUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}
