package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles account settings persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the settings row of a new tenant.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, email string) (*models.AccountSettings, error) {
	settings := &models.AccountSettings{TenantID: tenantID, Email: email}
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// FindByTenant loads the single settings row of tenantID.
func (r *Repository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.AccountSettings, error) {
	var settings models.AccountSettings
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update writes only the given columns of the settings row id. Columns not
// named in changes keep whatever value is stored.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return fmt.Errorf("no account settings changes")
	}
	res := r.db.WithContext(ctx).Model(&models.AccountSettings{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
