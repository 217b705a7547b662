package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MailSetting is one direct-mail targeting rule; (tenant, state, county) is unique.
type MailSetting struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_mail_settings_tenant_state_county,priority:1"`
	StateID   int64     `gorm:"column:state_id;not null;uniqueIndex:uq_mail_settings_tenant_state_county,priority:2"`
	CountyID  int64     `gorm:"column:county_id;not null;uniqueIndex:uq_mail_settings_tenant_state_county,priority:3"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (MailSetting) TableName() string { return "mail_settings" }

func (m *MailSetting) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MailSettingArea links a mail setting to one targeted area of law.
type MailSettingArea struct {
	MailSettingID uuid.UUID `gorm:"column:mail_setting_id;type:uuid;primaryKey"`
	AreaOfLawID   int64     `gorm:"column:area_of_law_id;primaryKey"`
}

func (MailSettingArea) TableName() string { return "mail_setting_areas" }
