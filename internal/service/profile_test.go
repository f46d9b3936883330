package service

import (
	"context"
	"testing"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Create(t *testing.T) {
	q := newFakeQuerier()
	svc := NewProfileService(q, discardLogger())
	userRef := uuid.New()

	profile, err := svc.Create(context.Background(), domain.CreateProfileParams{
		UserRef:  userRef,
		Nome:     "  joão   da silva ",
		Telefone: " 11 99999-0000 ",
		Email:    "Joao@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, userRef, profile.UserRef)
	assert.Equal(t, "João Da Silva", profile.Nome)
	assert.Equal(t, "11 99999-0000", profile.Telefone)
	assert.Equal(t, "joao@example.com", profile.Email)
}

func TestProfileService_CreateRequiresNome(t *testing.T) {
	svc := NewProfileService(newFakeQuerier(), discardLogger())

	_, err := svc.Create(context.Background(), domain.CreateProfileParams{UserRef: uuid.New(), Nome: "   "})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, "Nome is required", domain.ErrorMessage(err))
}

func TestProfileService_CreateDatabaseDown(t *testing.T) {
	q := newFakeQuerier()
	q.failWith = errDatabaseDown
	svc := NewProfileService(q, discardLogger())

	_, err := svc.Create(context.Background(), domain.CreateProfileParams{UserRef: uuid.New(), Nome: "Ana"})
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestProfileService_ListOrderedByNome(t *testing.T) {
	svc := NewProfileService(newFakeQuerier(), discardLogger())
	ctx := context.Background()

	for _, nome := range []string{"carla", "ana", "bruno"} {
		_, err := svc.Create(ctx, domain.CreateProfileParams{UserRef: uuid.New(), Nome: nome, Email: nome + "@x.com"})
		require.NoError(t, err)
	}

	profiles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Ana", profiles[0].Nome)
	assert.Equal(t, "Bruno", profiles[1].Nome)
	assert.Equal(t, "Carla", profiles[2].Nome)
}

func TestProfileService_ListEmpty(t *testing.T) {
	svc := NewProfileService(newFakeQuerier(), discardLogger())

	profiles, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestProfileService_GetNotFound(t *testing.T) {
	svc := NewProfileService(newFakeQuerier(), discardLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
