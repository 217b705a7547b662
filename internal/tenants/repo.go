package tenants

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"github.com/lawscheduling/lawscheduling-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles tenant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to tenant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new tenant row.
func (r *Repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// FindBySlug is an exact, case-sensitive lookup.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByID loads a tenant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// SlugExists reports whether a tenant already owns slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FirstForUser returns the tenant of the user's oldest membership.
func (r *Repository) FirstForUser(ctx context.Context, userID uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.tenant_id = tenants.id").
		Where("memberships.user_id = ?", userID).
		Order("memberships.created_at ASC").
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

type overviewRow struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	CreatedAt    time.Time
	AccountEmail *string
}

type leadCountRow struct {
	TenantID uuid.UUID
	Total    int64
}

type memberLoginRow struct {
	TenantID    uuid.UUID
	LastLoginAt *time.Time
}

// ListOverview returns tenants newest first with their account email, lead
// count and the most recent login among their members. A zero limit returns
// every tenant.
func (r *Repository) ListOverview(ctx context.Context, limit int, cursor *pagination.Cursor) ([]TenantOverview, error) {
	q := r.db.WithContext(ctx).
		Table("tenants").
		Select("tenants.id, tenants.name, tenants.slug, tenants.created_at, account_settings.email AS account_email").
		Joins("LEFT JOIN account_settings ON account_settings.tenant_id = tenants.id").
		Order("tenants.created_at DESC").
		Order("tenants.id DESC")
	if cursor != nil {
		q = q.Where("tenants.created_at < ? OR (tenants.created_at = ? AND tenants.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []overviewRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []TenantOverview{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var counts []leadCountRow
	if err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("tenant_id, COUNT(*) AS total").
		Where("tenant_id IN ?", ids).
		Group("tenant_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	leadCounts := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		leadCounts[c.TenantID] = c.Total
	}

	var logins []memberLoginRow
	if err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.tenant_id, users.last_login_at").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.tenant_id IN ? AND users.last_login_at IS NOT NULL", ids).
		Scan(&logins).Error; err != nil {
		return nil, err
	}
	lastLogin := make(map[uuid.UUID]time.Time, len(logins))
	for _, l := range logins {
		if l.LastLoginAt == nil {
			continue
		}
		if prev, ok := lastLogin[l.TenantID]; !ok || l.LastLoginAt.After(prev) {
			lastLogin[l.TenantID] = *l.LastLoginAt
		}
	}

	out := make([]TenantOverview, 0, len(rows))
	for _, row := range rows {
		item := TenantOverview{
			ID:           row.ID,
			Name:         row.Name,
			Slug:         row.Slug,
			CreatedAt:    row.CreatedAt,
			AccountEmail: row.AccountEmail,
			LeadCount:    leadCounts[row.ID],
		}
		if at, ok := lastLogin[row.ID]; ok {
			at := at
			item.OwnerLastLoginAt = &at
		}
		out = append(out, item)
	}
	return out, nil
}
