package tenants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/dbtest"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"github.com/lawscheduling/lawscheduling-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTenant(t *testing.T, conn *gorm.DB, name, slug string, createdAt time.Time) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: name, Slug: slug, CreatedAt: createdAt}
	require.NoError(t, conn.Create(tenant).Error)
	return tenant
}

func TestRepositoryFindBySlugIsExact(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	seeded := seedTenant(t, conn, "Acme Law", "acme-law", time.Now().UTC())

	found, err := repo.FindBySlug(ctx, "acme-law")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	for _, miss := range []string{"Acme-Law", "acme", "acme-law ", ""} {
		_, err := repo.FindBySlug(ctx, miss)
		assert.Truef(t, errors.Is(err, gorm.ErrRecordNotFound), "slug %q should not resolve", miss)
	}
}

func TestRepositoryFirstForUserPicksOldestMembership(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	older := seedTenant(t, conn, "Older Firm", "older-firm", time.Now().UTC())
	newer := seedTenant(t, conn, "Newer Firm", "newer-firm", time.Now().UTC())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Create(&models.Membership{UserID: userID, TenantID: newer.ID, CreatedAt: base.Add(time.Hour)}).Error)
	require.NoError(t, conn.Create(&models.Membership{UserID: userID, TenantID: older.ID, CreatedAt: base}).Error)

	got, err := repo.FirstForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = repo.FirstForUser(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryListOverviewAggregates(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	first := seedTenant(t, conn, "First Firm", "first-firm", base)
	second := seedTenant(t, conn, "Second Firm", "second-firm", base.Add(time.Hour))

	require.NoError(t, conn.Create(&models.AccountSettings{TenantID: first.ID, Email: "first@firm.law"}).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Create(&models.Lead{TenantID: first.ID, Name: "Lead", Email: "lead@x.io", Phone: "1"}).Error)
	}

	earlier := base.Add(24 * time.Hour)
	later := base.Add(48 * time.Hour)
	owner := &models.User{Email: "owner@first.law", PasswordHash: "h", IsActive: true, LastLoginAt: &earlier}
	partner := &models.User{Email: "partner@first.law", PasswordHash: "h", IsActive: true, LastLoginAt: &later}
	require.NoError(t, conn.Create(owner).Error)
	require.NoError(t, conn.Create(partner).Error)
	require.NoError(t, conn.Create(&models.Membership{UserID: owner.ID, TenantID: first.ID}).Error)
	require.NoError(t, conn.Create(&models.Membership{UserID: partner.ID, TenantID: first.ID}).Error)

	rows, err := repo.ListOverview(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, second.ID, rows[0].ID)
	assert.Nil(t, rows[0].AccountEmail)
	assert.Zero(t, rows[0].LeadCount)
	assert.Nil(t, rows[0].OwnerLastLoginAt)

	assert.Equal(t, first.ID, rows[1].ID)
	require.NotNil(t, rows[1].AccountEmail)
	assert.Equal(t, "first@firm.law", *rows[1].AccountEmail)
	assert.EqualValues(t, 3, rows[1].LeadCount)
	require.NotNil(t, rows[1].OwnerLastLoginAt)
	assert.True(t, rows[1].OwnerLastLoginAt.Equal(later))
}

func TestRepositoryListOverviewCursor(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	oldest := seedTenant(t, conn, "Oldest Firm", "oldest", base)
	middle := seedTenant(t, conn, "Middle Firm", "middle", base.Add(time.Hour))
	seedTenant(t, conn, "Newest Firm", "newest", base.Add(2*time.Hour))

	rows, err := repo.ListOverview(ctx, 5, &pagination.Cursor{CreatedAt: middle.CreatedAt, ID: middle.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.ID, rows[0].ID)
}
