package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/dbtest"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, NewPrincipal{Email: "  Owner@Acme.LAW ", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, "owner@acme.law", created.Email)

	byEmail, err := repo.FindByEmail(ctx, "OWNER@acme.law")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.law", byID.Email)

	_, err = repo.FindByEmail(ctx, "missing@acme.law")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryInactivePrincipal(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	created, err := repo.Create(ctx, NewPrincipal{Email: "paralegal@acme.law", PasswordHash: "hash", Inactive: true})
	require.NoError(t, err)
	assert.False(t, created.IsActive)
	assert.False(t, View(created).IsActive)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "inactive flag must survive the round trip")
}

func TestRepositoryDuplicateEmailIsUniqueViolation(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	exists, err := repo.EmailExists(ctx, "dup@acme.law")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, NewPrincipal{Email: "dup@acme.law", PasswordHash: "hash"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, NewPrincipal{Email: "DUP@acme.law", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	exists, err = repo.EmailExists(ctx, "Dup@Acme.law")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepositoryRecordLogin(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, NewPrincipal{Email: "login@acme.law", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Nil(t, user.LastLoginAt)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, user.ID, at))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))

	assert.ErrorIs(t, repo.RecordLogin(ctx, uuid.New(), at), gorm.ErrRecordNotFound)
}

func TestViewOmitsNil(t *testing.T) {
	assert.Nil(t, View(nil))
}
