package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AuthUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Perfil struct {
	UserRef   uuid.UUID
	Nome      string
	Telefone  sql.NullString
	Email     string
	AvatarUrl sql.NullString
	CreatedAt time.Time
}

type Product struct {
	ID           uuid.UUID
	Nome         string
	Preco        float64
	Quantidade   int32
	ImageKey     sql.NullString
	ImageUrl     sql.NullString
	ThumbnailKey sql.NullString
	ThumbnailUrl sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Entrada struct {
	ID        uuid.UUID
	Nome      string
	Categoria sql.NullString
	Preco     float64
	DataVenc  sql.NullTime
	DataPag   sql.NullTime
	UserRef   uuid.NullUUID
	ImageUrl  sql.NullString
	CreatedAt time.Time
}

type Job struct {
	ID           uuid.UUID
	JobType      string
	Payload      []byte
	Status       string
	Priority     int32
	Attempts     int32
	MaxAttempts  int32
	ErrorMessage sql.NullString
	ScheduledAt  time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	CreatedAt    time.Time
}
