package mailtargeting

import (
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
)

type StateDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type CountyDTO struct {
	ID      int64  `json:"id"`
	StateID int64  `json:"state_id"`
	Name    string `json:"name"`
}

type AreaOfLawDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MailSettingDTO carries the display names of its state and county.
type MailSettingDTO struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	StateID    int64     `json:"state_id"`
	StateName  string    `json:"state_name"`
	CountyID   int64     `json:"county_id"`
	CountyName string    `json:"county_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// SettingWithAreas pairs a mail setting with its targeted areas of law.
type SettingWithAreas struct {
	Setting MailSettingDTO `json:"setting"`
	Areas   []AreaOfLawDTO `json:"areas"`
}

// AddSettingInput is the body of a new targeting rule.
type AddSettingInput struct {
	StateID      int64   `json:"state_id" validate:"required,gt=0"`
	CountyID     int64   `json:"county_id" validate:"required,gt=0"`
	AreaOfLawIDs []int64 `json:"area_of_law_ids" validate:"required,min=1,dive,gt=0"`
}

// AddSettingResult is either the created setting or a rejection. A rejection
// is a business outcome, not a failure.
type AddSettingResult struct {
	Setting  *MailSettingDTO
	Rejected bool
	Reason   string
}

func stateFromModel(m models.State) StateDTO {
	return StateDTO{ID: m.ID, Name: m.Name, Abbreviation: m.Abbreviation}
}

func countyFromModel(m models.County) CountyDTO {
	return CountyDTO{ID: m.ID, StateID: m.StateID, Name: m.Name}
}

func areaFromModel(m models.AreaOfLaw) AreaOfLawDTO {
	return AreaOfLawDTO{ID: m.ID, Name: m.Name}
}
