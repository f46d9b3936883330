package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createPerfil = `-- name: CreatePerfil :one
INSERT INTO perfil (user_ref, nome, telefone, email)
VALUES ($1, $2, $3, $4)
RETURNING user_ref, nome, telefone, email, avatar_url, created_at
`

type CreatePerfilParams struct {
	UserRef  uuid.UUID
	Nome     string
	Telefone sql.NullString
	Email    string
}

func (q *Queries) CreatePerfil(ctx context.Context, arg CreatePerfilParams) (Perfil, error) {
	row := q.db.QueryRowContext(ctx, createPerfil,
		arg.UserRef,
		arg.Nome,
		arg.Telefone,
		arg.Email,
	)
	var i Perfil
	err := row.Scan(
		&i.UserRef,
		&i.Nome,
		&i.Telefone,
		&i.Email,
		&i.AvatarUrl,
		&i.CreatedAt,
	)
	return i, err
}

const getPerfilByUserRef = `-- name: GetPerfilByUserRef :one
SELECT user_ref, nome, telefone, email, avatar_url, created_at
FROM perfil
WHERE user_ref = $1
`

func (q *Queries) GetPerfilByUserRef(ctx context.Context, userRef uuid.UUID) (Perfil, error) {
	row := q.db.QueryRowContext(ctx, getPerfilByUserRef, userRef)
	var i Perfil
	err := row.Scan(
		&i.UserRef,
		&i.Nome,
		&i.Telefone,
		&i.Email,
		&i.AvatarUrl,
		&i.CreatedAt,
	)
	return i, err
}

const listPerfis = `-- name: ListPerfis :many
SELECT user_ref, nome, telefone, email, avatar_url, created_at
FROM perfil
ORDER BY nome ASC
`

func (q *Queries) ListPerfis(ctx context.Context) ([]Perfil, error) {
	rows, err := q.db.QueryContext(ctx, listPerfis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Perfil
	for rows.Next() {
		var i Perfil
		if err := rows.Scan(
			&i.UserRef,
			&i.Nome,
			&i.Telefone,
			&i.Email,
			&i.AvatarUrl,
			&i.CreatedAt,
		); err != nil {
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
