package mailtargeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads reference data and persists mail settings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) States(ctx context.Context) ([]models.State, error) {
	rows := []models.State{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Counties(ctx context.Context, stateID int64) ([]models.County, error) {
	rows := []models.County{}
	if err := r.db.WithContext(ctx).Where("state_id = ?", stateID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) AreasOfLaw(ctx context.Context) ([]models.AreaOfLaw, error) {
	rows := []models.AreaOfLaw{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountyInState reports whether countyID exists and belongs to stateID.
func (r *Repository) CountyInState(ctx context.Context, stateID, countyID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.County{}).
		Where("id = ? AND state_id = ?", countyID, stateID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountAreas counts how many of ids are known areas of law.
func (r *Repository) CountAreas(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AreaOfLaw{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SettingExists reports whether the tenant already targets (state, county).
func (r *Repository) SettingExists(ctx context.Context, tenantID uuid.UUID, stateID, countyID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MailSetting{}).
		Where("tenant_id = ? AND state_id = ? AND county_id = ?", tenantID, stateID, countyID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSetting inserts setting and one join row per area atomically.
func (r *Repository) CreateSetting(ctx context.Context, setting *models.MailSetting, areaIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(setting).Error; err != nil {
			return err
		}
		links := make([]models.MailSettingArea, 0, len(areaIDs))
		for _, id := range areaIDs {
			links = append(links, models.MailSettingArea{MailSettingID: setting.ID, AreaOfLawID: id})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

type settingRow struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	StateID    int64
	StateName  string
	CountyID   int64
	CountyName string
	CreatedAt  time.Time
}

// ListSettings returns the tenant's settings in creation order with their
// state and county names.
func (r *Repository) ListSettings(ctx context.Context, tenantID uuid.UUID) ([]settingRow, error) {
	rows := []settingRow{}
	err := r.db.WithContext(ctx).
		Table("mail_settings").
		Select("mail_settings.id, mail_settings.tenant_id, mail_settings.state_id, states.name AS state_name, mail_settings.county_id, counties.name AS county_name, mail_settings.created_at").
		Joins("JOIN states ON states.id = mail_settings.state_id").
		Joins("JOIN counties ON counties.id = mail_settings.county_id").
		Where("mail_settings.tenant_id = ?", tenantID).
		Order("mail_settings.created_at ASC").
		Order("mail_settings.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SettingBelongsTo reports whether settingID is one of tenantID's settings.
func (r *Repository) SettingBelongsTo(ctx context.Context, tenantID, settingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MailSetting{}).
		Where("id = ? AND tenant_id = ?", settingID, tenantID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type settingAreaRow struct {
	MailSettingID uuid.UUID
	ID            int64
	Name          string
}

// AreasBySetting loads the areas of law of settingIDs grouped by setting,
// each group sorted by name.
func (r *Repository) AreasBySetting(ctx context.Context, settingIDs []uuid.UUID) (map[uuid.UUID][]models.AreaOfLaw, error) {
	grouped := make(map[uuid.UUID][]models.AreaOfLaw, len(settingIDs))
	if len(settingIDs) == 0 {
		return grouped, nil
	}
	var rows []settingAreaRow
	err := r.db.WithContext(ctx).
		Table("mail_setting_areas").
		Select("mail_setting_areas.mail_setting_id, areas_of_law.id, areas_of_law.name").
		Joins("JOIN areas_of_law ON areas_of_law.id = mail_setting_areas.area_of_law_id").
		Where("mail_setting_areas.mail_setting_id IN ?", settingIDs).
		Order("areas_of_law.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		grouped[row.MailSettingID] = append(grouped[row.MailSettingID], models.AreaOfLaw{ID: row.ID, Name: row.Name})
	}
	return grouped, nil
}
