package auth

import (
	"context"
	"strings"

	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/internal/users"
	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/security"
	"github.com/lawscheduling/lawscheduling-backend/pkg/slug"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
	"gorm.io/gorm"
)

const emailTakenMessage = "email already registered"

// RegisterService handles the sign-up transaction.
type RegisterService interface {
	Register(ctx context.Context, req SignupRequest) (*SignupResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner       db.TxRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	tx          db.TxRunner
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		tx:          params.TxRunner,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the principal, its firm, the owner membership and the
// firm's account settings in one transaction.
func (s *registerService) Register(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirmName = strings.TrimSpace(req.FirmName)
	if err := validate.Check(req); err != nil {
		return nil, err
	}
	if err := security.CheckPolicy(req.Password, s.passwordCfg); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"password": err.Error()})
	}

	firmSlug := slug.FromName(req.FirmName)
	if !slug.Valid(firmSlug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"firm_name": "must contain letters or numbers"})
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user   *models.User
		tenant *models.Tenant
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		taken, err := userRepo.EmailExists(ctx, req.Email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}

		user, err = userRepo.Create(ctx, users.NewPrincipal{Email: req.Email, PasswordHash: passwordHash})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		tenant, err = tenants.CreateInTx(ctx, tx, tenants.CreateTenantInput{
			Name:         req.FirmName,
			Slug:         firmSlug,
			OwnerID:      user.ID,
			AccountEmail: req.Email,
		})
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign up")
	}

	return &SignupResponse{
		User: users.View(user),
		Firm: tenants.FromModel(tenant),
	}, nil
}
