package auth

import (
	"context"
	"strings"

	"github.com/lawscheduling/lawscheduling-backend/internal/adminroles"
	"github.com/lawscheduling/lawscheduling-backend/internal/users"
	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/security"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
	"gorm.io/gorm"
)

const (
	adminExistsMessage  = "admin user already exists"
	adminCreatedMessage = "admin user created"
)

// AdminRegisterService bootstraps the first administrator.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*AdminRegisterResponse, error)
}

// AdminRegisterServiceParams names the dependencies for the admin register flow.
type AdminRegisterServiceParams struct {
	TxRunner       db.TxRunner
	PasswordConfig config.PasswordConfig
}

type adminRegisterService struct {
	tx          db.TxRunner
	passwordCfg config.PasswordConfig
}

// NewAdminRegisterService builds the admin bootstrap service.
func NewAdminRegisterService(params AdminRegisterServiceParams) (AdminRegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &adminRegisterService{
		tx:          params.TxRunner,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates a principal holding the admin role. Once any administrator
// exists the call succeeds without creating anything.
func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*AdminRegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Check(req); err != nil {
		return nil, err
	}
	if err := security.CheckPolicy(req.Password, s.passwordCfg); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"password": err.Error()})
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		created *models.User
		exists  bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		roles := adminroles.NewRepository(tx)
		userRepo := users.NewRepository(tx)

		var err error
		exists, err = roles.AnyExists(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check admin roles")
		}
		if exists {
			return nil
		}

		taken, err := userRepo.EmailExists(ctx, req.Email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}

		created, err = userRepo.Create(ctx, users.NewPrincipal{Email: req.Email, PasswordHash: passwordHash})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin user")
		}
		if err := roles.Grant(ctx, created.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant admin role")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register admin")
	}

	if exists {
		return &AdminRegisterResponse{Created: false, Message: adminExistsMessage}, nil
	}
	return &AdminRegisterResponse{Created: true, Message: adminCreatedMessage, User: users.View(created)}, nil
}
