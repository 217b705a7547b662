package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

// AccountSettingsDTO is the back-office view of a firm's settings row.
type AccountSettingsDTO struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

func FromModel(m *models.AccountSettings) *AccountSettingsDTO {
	if m == nil {
		return nil
	}
	return &AccountSettingsDTO{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Email:        m.Email,
		ProfileImage: m.ProfileImage,
		UpdatedAt:    m.UpdatedAt,
	}
}
