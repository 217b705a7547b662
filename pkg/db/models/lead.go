package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is an append-only intake form submission.
type Lead struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index:idx_leads_tenant_submitted,priority:1"`
	Name        string    `gorm:"column:name;not null"`
	Email       string    `gorm:"column:email;not null"`
	Phone       string    `gorm:"column:phone;not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null;index:idx_leads_tenant_submitted,priority:2"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.SubmittedAt.IsZero() {
		l.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// IntakeResponse is one free-form answer attached to a lead.
type IntakeResponse struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	LeadID      uuid.UUID `gorm:"column:lead_id;type:uuid;not null;index:idx_intake_responses_lead,priority:1"`
	Position    int       `gorm:"column:position;not null;index:idx_intake_responses_lead,priority:2"`
	QuestionKey string    `gorm:"column:question_key;not null"`
	Answer      string    `gorm:"column:answer;not null"`
}

func (IntakeResponse) TableName() string { return "intake_responses" }

func (r *IntakeResponse) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
