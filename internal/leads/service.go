package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/metrics"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
	"github.com/spf13/cast"
)

const (
	fieldName  = "name"
	fieldEmail = "email"
	fieldPhone = "phone"

	outcomeCreated  = "created"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type leadsRepository interface {
	Create(ctx context.Context, lead *models.Lead, responses []models.IntakeResponse) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Lead, error)
	ResponsesByLead(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]models.IntakeResponse, error)
}

type tenantResolver interface {
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
}

// Service is the lead store. Reads never fail outright: on a backend error
// they return an empty, non-nil slice together with the error.
type Service interface {
	Create(ctx context.Context, tenantSlug string, fields map[string]any) (*LeadWithResponsesDTO, error)
	List(ctx context.Context, tenantSlug string) ([]LeadDTO, error)
	ListWithResponses(ctx context.Context, tenantSlug string) ([]LeadWithResponsesDTO, error)
}

type service struct {
	repo    leadsRepository
	tenants tenantResolver
	metrics *metrics.LeadMetrics
	now     func() time.Time
}

func NewService(repo leadsRepository, tenants tenantResolver, m *metrics.LeadMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("leads repository required")
	}
	if tenants == nil {
		return nil, fmt.Errorf("tenant resolver required")
	}
	return &service{repo: repo, tenants: tenants, metrics: m, now: time.Now}, nil
}

// Create stores a public intake submission. Keys other than name, email and
// phone become intake responses ordered by key.
func (s *service) Create(ctx context.Context, tenantSlug string, fields map[string]any) (*LeadWithResponsesDTO, error) {
	contact, err := contactFrom(fields)
	if err != nil {
		s.metrics.IncSubmitted(outcomeRejected)
		return nil, err
	}

	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		s.metrics.IncSubmitted(outcomeRejected)
		return nil, err
	}

	lead := &models.Lead{
		TenantID:    tenantID,
		Name:        contact.Name,
		Email:       contact.Email,
		Phone:       contact.Phone,
		SubmittedAt: s.now().UTC(),
	}
	responses := extraResponses(fields)
	if err := s.repo.Create(ctx, lead, responses); err != nil {
		s.metrics.IncSubmitted(outcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
	}

	s.metrics.IncSubmitted(outcomeCreated)
	dto := WithResponses(lead, responses)
	return &dto, nil
}

func (s *service) List(ctx context.Context, tenantSlug string) ([]LeadDTO, error) {
	rows, err := s.load(ctx, tenantSlug)
	if err != nil {
		return []LeadDTO{}, err
	}
	out := make([]LeadDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListWithResponses(ctx context.Context, tenantSlug string) ([]LeadWithResponsesDTO, error) {
	rows, err := s.load(ctx, tenantSlug)
	if err != nil {
		return []LeadWithResponsesDTO{}, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	grouped, err := s.repo.ResponsesByLead(ctx, ids)
	if err != nil {
		return []LeadWithResponsesDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list intake responses")
	}

	out := make([]LeadWithResponsesDTO, 0, len(rows))
	for i := range rows {
		out = append(out, WithResponses(&rows[i], grouped[rows[i].ID]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, tenantSlug string) ([]models.Lead, error) {
	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}
	return rows, nil
}

func contactFrom(fields map[string]any) (intakeContact, error) {
	details := map[string]string{}
	text := func(key string) string {
		raw, ok := fields[key]
		if !ok || raw == nil {
			return ""
		}
		value, ok := raw.(string)
		if !ok {
			details[key] = "must be a string"
			return ""
		}
		return strings.TrimSpace(value)
	}

	contact := intakeContact{
		Name:  text(fieldName),
		Email: text(fieldEmail),
		Phone: text(fieldPhone),
	}
	if len(details) > 0 {
		return contact, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	if err := validate.Check(contact); err != nil {
		return contact, err
	}
	return contact, nil
}

func extraResponses(fields map[string]any) []models.IntakeResponse {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		switch key {
		case fieldName, fieldEmail, fieldPhone:
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	responses := make([]models.IntakeResponse, 0, len(keys))
	for i, key := range keys {
		responses = append(responses, models.IntakeResponse{
			Position:    i,
			QuestionKey: key,
			Answer:      answerString(fields[key]),
		})
	}
	return responses
}

// answerString coerces scalar answers with cast and falls back to JSON for
// lists and objects.
func answerString(value any) string {
	if s, err := cast.ToStringE(value); err == nil {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}
