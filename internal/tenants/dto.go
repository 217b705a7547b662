package tenants

import (
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

// TenantDTO is the public shape of a law firm.
type TenantDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicTenantDTO is what anonymous visitors see on the firm page.
type PublicTenantDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateTenantInput carries everything needed to open a firm account.
type CreateTenantInput struct {
	Name         string    `json:"name" validate:"notblank,min=3,max=30"`
	Slug         string    `json:"slug" validate:"required,slug"`
	OwnerID      uuid.UUID `json:"owner_id" validate:"required"`
	AccountEmail string    `json:"account_email" validate:"required,email"`
}

// TenantOverview is one row of the firm-management listing.
type TenantOverview struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	CreatedAt        time.Time  `json:"created_at"`
	AccountEmail     *string    `json:"account_email,omitempty"`
	LeadCount        int64      `json:"lead_count"`
	OwnerLastLoginAt *time.Time `json:"owner_last_login_at,omitempty"`
}

// OverviewPage is a page of the firm-management listing.
type OverviewPage struct {
	Firms      []TenantOverview `json:"firms"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func FromModel(t *models.Tenant) *TenantDTO {
	if t == nil {
		return nil
	}
	return &TenantDTO{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		CreatedAt: t.CreatedAt,
	}
}

func (t TenantDTO) Public() PublicTenantDTO {
	return PublicTenantDTO{Name: t.Name, Slug: t.Slug}
}

// ConnectMemberInput names the principal an administrator attaches to a firm.
type ConnectMemberInput struct {
	Email string `json:"email" validate:"required,email"`
}
