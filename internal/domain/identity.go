// Package domain contains core business types and interfaces.
//
// This file defines the identity and profile types used by the auth flow.
// An Identity is the account held by the identity collaborator (email and
// password); a Profile is the application's own record about that user.
package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Identity is an authenticated account.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Never expose this in API responses
	CreatedAt    time.Time
}

// Profile is the "perfil" record linked to an identity through UserRef.
type Profile struct {
	UserRef   uuid.UUID `json:"user_ref"`
	Nome      string    `json:"nome"`
	Telefone  string    `json:"telefone,omitempty"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProfileParams contains the parameters for a new profile record.
type CreateProfileParams struct {
	UserRef  uuid.UUID
	Nome     string
	Telefone string
	Email    string
}

// UserSummary is the public listing shape of a profile.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
}

// Summary returns the listing shape of the profile.
func (p *Profile) Summary() UserSummary {
	return UserSummary{
		ID:        p.UserRef,
		Nome:      p.Nome,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// ToNullTime converts a time pointer to sql.NullTime.
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ToNullUUID converts a uuid pointer to uuid.NullUUID.
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{Valid: false}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
