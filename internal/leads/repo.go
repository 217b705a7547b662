package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists leads and their intake responses.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts lead and its responses atomically.
func (r *Repository) Create(ctx context.Context, lead *models.Lead, responses []models.IntakeResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		if len(responses) == 0 {
			return nil
		}
		for i := range responses {
			responses[i].LeadID = lead.ID
		}
		return tx.Create(&responses).Error
	})
}

// ListByTenant returns the tenant's leads, most recent first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Lead, error) {
	rows := []models.Lead{}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ResponsesByLead loads the responses of leadIDs grouped by lead, each group
// in insertion order.
func (r *Repository) ResponsesByLead(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]models.IntakeResponse, error) {
	grouped := make(map[uuid.UUID][]models.IntakeResponse, len(leadIDs))
	if len(leadIDs) == 0 {
		return grouped, nil
	}
	var rows []models.IntakeResponse
	err := r.db.WithContext(ctx).
		Where("lead_id IN ?", leadIDs).
		Order("lead_id").
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		grouped[row.LeadID] = append(grouped[row.LeadID], row)
	}
	return grouped, nil
}
