package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/internal/accounts"
	"github.com/lawscheduling/lawscheduling-backend/internal/memberships"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/pagination"
	"github.com/lawscheduling/lawscheduling-backend/pkg/slug"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
	"gorm.io/gorm"
)

const slugTakenMessage = "firm name already taken"

type tenantsRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListOverview(ctx context.Context, limit int, cursor *pagination.Cursor) ([]TenantOverview, error)
}

type membershipsRepository interface {
	Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
}

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service is the tenant directory.
type Service interface {
	Resolve(ctx context.Context, slug string) (*TenantDTO, error)
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
	SlugAvailable(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error)
	ListOverview(ctx context.Context, params pagination.Params) (*OverviewPage, error)
	ConnectMember(ctx context.Context, slug string, input ConnectMemberInput) error
}

// ServiceParams bundles the dependencies of the tenant directory.
type ServiceParams struct {
	Repo        tenantsRepository
	Memberships membershipsRepository
	Users       userLookup
	TxRunner    db.TxRunner
}

type service struct {
	repo        tenantsRepository
	memberships membershipsRepository
	users       userLookup
	tx          db.TxRunner
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        params.Repo,
		memberships: params.Memberships,
		users:       params.Users,
		tx:          params.TxRunner,
	}, nil
}

// Resolve looks a tenant up by its exact slug.
func (s *service) Resolve(ctx context.Context, slug string) (*TenantDTO, error) {
	tenant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tenant")
	}
	return FromModel(tenant), nil
}

func (s *service) ResolveID(ctx context.Context, slug string) (uuid.UUID, error) {
	tenant, err := s.Resolve(ctx, slug)
	if err != nil {
		return uuid.Nil, err
	}
	return tenant.ID, nil
}

// SlugAvailable reports whether slug is well formed and unclaimed.
func (s *service) SlugAvailable(ctx context.Context, candidate string) (bool, error) {
	if !slug.Valid(candidate) {
		return false, nil
	}
	exists, err := s.repo.SlugExists(ctx, candidate)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	return !exists, nil
}

func (s *service) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	var created *models.Tenant
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = CreateInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}
	return FromModel(created), nil
}

// CreateInTx writes a tenant, its owner membership and its account settings
// row using tx. The caller owns the transaction so the writes can join a
// larger unit such as sign-up.
func CreateInTx(ctx context.Context, tx *gorm.DB, input CreateTenantInput) (*models.Tenant, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.AccountEmail = strings.TrimSpace(input.AccountEmail)
	if err := validate.Check(input); err != nil {
		return nil, err
	}

	repo := NewRepository(tx)
	exists, err := repo.SlugExists(ctx, input.Slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, slugTakenMessage)
	}

	tenant := &models.Tenant{Name: input.Name, Slug: input.Slug}
	if err := repo.Create(ctx, tenant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, slugTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}

	if _, err := memberships.NewRepository(tx).Add(ctx, input.OwnerID, tenant.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
	}
	if _, err := accounts.NewRepository(tx).Create(ctx, tenant.ID, input.AccountEmail); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account settings")
	}
	return tenant, nil
}

// ListOverview pages through every tenant, newest first. A zero limit with
// no cursor returns the whole directory.
func (s *service) ListOverview(ctx context.Context, params pagination.Params) (*OverviewPage, error) {
	cursor, err := pagination.Decode(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListOverview(ctx, params.Fetch(), cursor)
	if err != nil {
		return &OverviewPage{Firms: []TenantOverview{}}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}

	page := &OverviewPage{}
	page.Firms, page.NextCursor = pagination.Trim(rows, params, func(row TenantOverview) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, nil
}

// ConnectMember makes the principal registered under input.Email staff of
// the tenant.
func (s *service) ConnectMember(ctx context.Context, tenantSlug string, input ConnectMemberInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Check(input); err != nil {
		return err
	}

	tenantID, err := s.ResolveID(ctx, tenantSlug)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	exists, err := s.memberships.Exists(ctx, user.ID, tenantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "user already belongs to this firm")
	}

	if _, err := s.memberships.Add(ctx, user.ID, tenantID); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already belongs to this firm")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}
	return nil
}
