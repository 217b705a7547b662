package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountSettings holds the single settings row of a tenant.
type AccountSettings struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_account_settings_tenant"`
	Email        string    `gorm:"column:email;not null"`
	ProfileImage *string   `gorm:"column:profile_image"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AccountSettings) TableName() string { return "account_settings" }

func (a *AccountSettings) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
