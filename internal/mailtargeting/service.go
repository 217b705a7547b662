package mailtargeting

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
)

const duplicateSettingReason = "a mail setting for this state and county already exists"

type mailRepository interface {
	States(ctx context.Context) ([]models.State, error)
	Counties(ctx context.Context, stateID int64) ([]models.County, error)
	AreasOfLaw(ctx context.Context) ([]models.AreaOfLaw, error)
	CountyInState(ctx context.Context, stateID, countyID int64) (bool, error)
	CountAreas(ctx context.Context, ids []int64) (int64, error)
	SettingExists(ctx context.Context, tenantID uuid.UUID, stateID, countyID int64) (bool, error)
	CreateSetting(ctx context.Context, setting *models.MailSetting, areaIDs []int64) error
	ListSettings(ctx context.Context, tenantID uuid.UUID) ([]settingRow, error)
	SettingBelongsTo(ctx context.Context, tenantID, settingID uuid.UUID) (bool, error)
	AreasBySetting(ctx context.Context, settingIDs []uuid.UUID) (map[uuid.UUID][]models.AreaOfLaw, error)
}

type tenantResolver interface {
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
}

// Service is the mail-targeting store. Reads return an empty, non-nil slice
// alongside any backend error.
type Service interface {
	GetStates(ctx context.Context) ([]StateDTO, error)
	GetCounties(ctx context.Context, stateID int64) ([]CountyDTO, error)
	GetAreasOfLaw(ctx context.Context) ([]AreaOfLawDTO, error)
	AddSetting(ctx context.Context, tenantSlug string, input AddSettingInput) (*AddSettingResult, error)
	ListSettings(ctx context.Context, tenantSlug string) ([]MailSettingDTO, error)
	ListAreasForSetting(ctx context.Context, tenantSlug string, settingID uuid.UUID) ([]AreaOfLawDTO, error)
	ListSettingsWithAreas(ctx context.Context, tenantSlug string) ([]SettingWithAreas, error)
}

type service struct {
	repo    mailRepository
	tenants tenantResolver
}

func NewService(repo mailRepository, tenants tenantResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mail targeting repository required")
	}
	if tenants == nil {
		return nil, fmt.Errorf("tenant resolver required")
	}
	return &service{repo: repo, tenants: tenants}, nil
}

func (s *service) GetStates(ctx context.Context) ([]StateDTO, error) {
	rows, err := s.repo.States(ctx)
	if err != nil {
		return []StateDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list states")
	}
	out := make([]StateDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, stateFromModel(row))
	}
	return out, nil
}

func (s *service) GetCounties(ctx context.Context, stateID int64) ([]CountyDTO, error) {
	rows, err := s.repo.Counties(ctx, stateID)
	if err != nil {
		return []CountyDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list counties")
	}
	out := make([]CountyDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, countyFromModel(row))
	}
	return out, nil
}

func (s *service) GetAreasOfLaw(ctx context.Context) ([]AreaOfLawDTO, error) {
	rows, err := s.repo.AreasOfLaw(ctx)
	if err != nil {
		return []AreaOfLawDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list areas of law")
	}
	return areasFromModels(rows), nil
}

// AddSetting creates a targeting rule. A duplicate (tenant, state, county)
// yields a rejected result, including when a concurrent insert wins the race.
func (s *service) AddSetting(ctx context.Context, tenantSlug string, input AddSettingInput) (*AddSettingResult, error) {
	if err := validate.Check(input); err != nil {
		return nil, err
	}
	areaIDs := uniqueIDs(input.AreaOfLawIDs)

	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	inState, err := s.repo.CountyInState(ctx, input.StateID, input.CountyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check county")
	}
	if !inState {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"county_id": "must be a county of the selected state"})
	}
	known, err := s.repo.CountAreas(ctx, areaIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check areas of law")
	}
	if known != int64(len(areaIDs)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"area_of_law_ids": "contains an unknown area of law"})
	}

	exists, err := s.repo.SettingExists(ctx, tenantID, input.StateID, input.CountyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check mail setting")
	}
	if exists {
		return &AddSettingResult{Rejected: true, Reason: duplicateSettingReason}, nil
	}

	setting := &models.MailSetting{TenantID: tenantID, StateID: input.StateID, CountyID: input.CountyID}
	if err := s.repo.CreateSetting(ctx, setting, areaIDs); err != nil {
		if db.IsUniqueViolation(err, "") {
			return &AddSettingResult{Rejected: true, Reason: duplicateSettingReason}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create mail setting")
	}

	rows, err := s.repo.ListSettings(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mail setting")
	}
	for _, row := range rows {
		if row.ID == setting.ID {
			dto := settingFromRow(row)
			return &AddSettingResult{Setting: &dto}, nil
		}
	}
	return &AddSettingResult{Setting: &MailSettingDTO{
		ID:        setting.ID,
		TenantID:  setting.TenantID,
		StateID:   setting.StateID,
		CountyID:  setting.CountyID,
		CreatedAt: setting.CreatedAt,
	}}, nil
}

func (s *service) ListSettings(ctx context.Context, tenantSlug string) ([]MailSettingDTO, error) {
	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		return []MailSettingDTO{}, err
	}
	rows, err := s.repo.ListSettings(ctx, tenantID)
	if err != nil {
		return []MailSettingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list mail settings")
	}
	out := make([]MailSettingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, settingFromRow(row))
	}
	return out, nil
}

// ListAreasForSetting returns the areas of one setting. A setting owned by a
// different tenant is reported as not found.
func (s *service) ListAreasForSetting(ctx context.Context, tenantSlug string, settingID uuid.UUID) ([]AreaOfLawDTO, error) {
	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		return []AreaOfLawDTO{}, err
	}
	owned, err := s.repo.SettingBelongsTo(ctx, tenantID, settingID)
	if err != nil {
		return []AreaOfLawDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mail setting")
	}
	if !owned {
		return []AreaOfLawDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "mail setting not found")
	}
	grouped, err := s.repo.AreasBySetting(ctx, []uuid.UUID{settingID})
	if err != nil {
		return []AreaOfLawDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list areas for mail setting")
	}
	return areasFromModels(grouped[settingID]), nil
}

func (s *service) ListSettingsWithAreas(ctx context.Context, tenantSlug string) ([]SettingWithAreas, error) {
	settings, err := s.ListSettings(ctx, tenantSlug)
	if err != nil {
		return []SettingWithAreas{}, err
	}
	ids := make([]uuid.UUID, 0, len(settings))
	for _, setting := range settings {
		ids = append(ids, setting.ID)
	}
	grouped, err := s.repo.AreasBySetting(ctx, ids)
	if err != nil {
		return []SettingWithAreas{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list areas for mail settings")
	}
	out := make([]SettingWithAreas, 0, len(settings))
	for _, setting := range settings {
		out = append(out, SettingWithAreas{Setting: setting, Areas: areasFromModels(grouped[setting.ID])})
	}
	return out, nil
}

func settingFromRow(row settingRow) MailSettingDTO {
	return MailSettingDTO{
		ID:         row.ID,
		TenantID:   row.TenantID,
		StateID:    row.StateID,
		StateName:  row.StateName,
		CountyID:   row.CountyID,
		CountyName: row.CountyName,
		CreatedAt:  row.CreatedAt,
	}
}

func areasFromModels(rows []models.AreaOfLaw) []AreaOfLawDTO {
	out := make([]AreaOfLawDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, areaFromModel(row))
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
