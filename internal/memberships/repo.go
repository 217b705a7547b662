// Package memberships stores which principals are staff of which firm.
package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Add makes userID staff of tenantID. A second Add for the same pair fails
// with a unique violation.
func (r *Repository) Add(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	row := &models.Membership{UserID: userID, TenantID: tenantID}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return db.Exists(r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID))
}
