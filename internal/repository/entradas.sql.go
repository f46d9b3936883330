package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const listEntradas = `-- name: ListEntradas :many
SELECT id, nome, categoria, preco::float8, data_venc, data_pag, user_ref, image_url, created_at
FROM entradas
ORDER BY data_venc ASC NULLS LAST, created_at DESC
`

func (q *Queries) ListEntradas(ctx context.Context) ([]Entrada, error) {
	rows, err := q.db.QueryContext(ctx, listEntradas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entrada
	for rows.Next() {
		var i Entrada
		if err := scanEntrada(rows, &i); err != nil {
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

const getEntradaByID = `-- name: GetEntradaByID :one
SELECT id, nome, categoria, preco::float8, data_venc, data_pag, user_ref, image_url, created_at
FROM entradas
WHERE id = $1
`

func (q *Queries) GetEntradaByID(ctx context.Context, id uuid.UUID) (Entrada, error) {
	row := q.db.QueryRowContext(ctx, getEntradaByID, id)
	var i Entrada
	err := scanEntrada(row, &i)
	return i, err
}

const createEntrada = `-- name: CreateEntrada :one
INSERT INTO entradas (nome, categoria, preco, data_venc, data_pag, user_ref, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, nome, categoria, preco::float8, data_venc, data_pag, user_ref, image_url, created_at
`

type CreateEntradaParams struct {
	Nome      string
	Categoria sql.NullString
	Preco     float64
	DataVenc  sql.NullTime
	DataPag   sql.NullTime
	UserRef   uuid.NullUUID
	ImageUrl  sql.NullString
}

func (q *Queries) CreateEntrada(ctx context.Context, arg CreateEntradaParams) (Entrada, error) {
	row := q.db.QueryRowContext(ctx, createEntrada,
		arg.Nome,
		arg.Categoria,
		arg.Preco,
		arg.DataVenc,
		arg.DataPag,
		arg.UserRef,
		arg.ImageUrl,
	)
	var i Entrada
	err := scanEntrada(row, &i)
	return i, err
}

// UpdateEntrada only overwrites the columns whose parameter is non-null.
const updateEntrada = `-- name: UpdateEntrada :one
UPDATE entradas
SET nome = COALESCE($2, nome),
    categoria = COALESCE($3, categoria),
    preco = COALESCE($4, preco),
    data_venc = COALESCE($5, data_venc),
    data_pag = COALESCE($6, data_pag),
    image_url = COALESCE($7, image_url)
WHERE id = $1
RETURNING id, nome, categoria, preco::float8, data_venc, data_pag, user_ref, image_url, created_at
`

type UpdateEntradaParams struct {
	ID        uuid.UUID
	Nome      sql.NullString
	Categoria sql.NullString
	Preco     sql.NullFloat64
	DataVenc  sql.NullTime
	DataPag   sql.NullTime
	ImageUrl  sql.NullString
}

func (q *Queries) UpdateEntrada(ctx context.Context, arg UpdateEntradaParams) (Entrada, error) {
	row := q.db.QueryRowContext(ctx, updateEntrada,
		arg.ID,
		arg.Nome,
		arg.Categoria,
		arg.Preco,
		arg.DataVenc,
		arg.DataPag,
		arg.ImageUrl,
	)
	var i Entrada
	err := scanEntrada(row, &i)
	return i, err
}

const deleteEntrada = `-- name: DeleteEntrada :execrows
DELETE FROM entradas WHERE id = $1
`

func (q *Queries) DeleteEntrada(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEntrada, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countEntradas = `-- name: CountEntradas :one
SELECT COUNT(*)::bigint AS count,
       COALESCE(SUM(preco), 0)::float8 AS total,
       COUNT(*) FILTER (WHERE data_pag IS NULL)::bigint AS pendentes
FROM entradas
`

type CountEntradasRow struct {
	Count     int64
	Total     float64
	Pendentes int64
}

func (q *Queries) CountEntradas(ctx context.Context) (CountEntradasRow, error) {
	row := q.db.QueryRowContext(ctx, countEntradas)
	var i CountEntradasRow
	err := row.Scan(&i.Count, &i.Total, &i.Pendentes)
	return i, err
}

func scanEntrada(s scanner, i *Entrada) error {
	return s.Scan(
		&i.ID,
		&i.Nome,
		&i.Categoria,
		&i.Preco,
		&i.DataVenc,
		&i.DataPag,
		&i.UserRef,
		&i.ImageUrl,
		&i.CreatedAt,
	)
}
