package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
	"gorm.io/gorm"
)

type accountsRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.AccountSettings, error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) error
}

type tenantResolver interface {
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
}

// Service exposes the per-tenant account settings.
type Service interface {
	Get(ctx context.Context, tenantSlug string) (*AccountSettingsDTO, error)
	Update(ctx context.Context, tenantSlug string, input UpdateInput) (*AccountSettingsDTO, error)
}

type service struct {
	repo    accountsRepository
	tenants tenantResolver
	now     func() time.Time
}

func NewService(repo accountsRepository, tenants tenantResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tenants == nil {
		return nil, fmt.Errorf("tenant resolver required")
	}
	return &service{repo: repo, tenants: tenants, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, tenantSlug string) (*AccountSettingsDTO, error) {
	settings, err := s.load(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	return FromModel(settings), nil
}

func (s *service) Update(ctx context.Context, tenantSlug string, input UpdateInput) (*AccountSettingsDTO, error) {
	if input.Email != nil {
		trimmed := strings.TrimSpace(*input.Email)
		if !validate.Email(trimmed) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"email": "must be a valid email"})
		}
		input.Email = &trimmed
	}

	settings, err := s.load(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if input.Email != nil {
		changes["email"] = *input.Email
		settings.Email = *input.Email
	}
	settings.UpdatedAt = s.now().UTC()
	changes["updated_at"] = settings.UpdatedAt

	if err := s.repo.Update(ctx, settings.ID, changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account settings not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account settings")
	}
	return FromModel(settings), nil
}

func (s *service) load(ctx context.Context, tenantSlug string) (*models.AccountSettings, error) {
	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account settings not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account settings")
	}
	return settings, nil
}
