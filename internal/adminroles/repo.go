package adminroles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

// Repository persists global administrator grants.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Grant marks userID as an administrator. Granting twice is a no-op.
func (r *Repository) Grant(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.AdminRole{UserID: userID}).Error
}

// IsAdmin reports whether userID holds the administrator role.
func (r *Repository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return db.Exists(r.db.WithContext(ctx).Model(&models.AdminRole{}).Where("user_id = ?", userID))
}

// AnyExists reports whether at least one administrator has been granted.
func (r *Repository) AnyExists(ctx context.Context) (bool, error) {
	return db.Exists(r.db.WithContext(ctx).Model(&models.AdminRole{}))
}
