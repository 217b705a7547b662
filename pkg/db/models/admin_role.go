package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminRole marks a user as a global administrator.
type AdminRole struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminRole) TableName() string { return "admin_roles" }
