package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lawscheduling/lawscheduling-backend/internal/access"
	"github.com/lawscheduling/lawscheduling-backend/internal/adminroles"
	"github.com/lawscheduling/lawscheduling-backend/internal/memberships"
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/internal/users"
	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/dbtest"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"gorm.io/gorm"
)

var testPasswordConfig = config.PasswordConfig{
	MinLength:        8,
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func newRegisterService(t *testing.T, conn *gorm.DB) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner:       dbtest.Client(conn),
		PasswordConfig: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := conn.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRegisterCreatesFirmTheOwnerCanAccess(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newRegisterService(t, conn)
	ctx := context.Background()

	resp, err := svc.Register(ctx, SignupRequest{
		Email:    " Owner@Acme.Law ",
		Password: "correct-horse",
		FirmName: "Acme Law",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Firm.Slug != "acme-law" || resp.Firm.Name != "Acme Law" {
		t.Fatalf("unexpected firm %+v", resp.Firm)
	}
	if resp.User.Email != "owner@acme.law" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}

	var settings models.AccountSettings
	if err := conn.Where("tenant_id = ?", resp.Firm.ID).First(&settings).Error; err != nil {
		t.Fatalf("settings missing: %v", err)
	}
	if settings.Email != "owner@acme.law" {
		t.Fatalf("expected settings seeded with sign-up email, got %q", settings.Email)
	}

	tenantSvc, err := tenants.NewService(tenants.ServiceParams{
		Repo:        tenants.NewRepository(conn),
		Memberships: memberships.NewRepository(conn),
		Users:       users.NewRepository(conn),
		TxRunner:    dbtest.Client(conn),
	})
	if err != nil {
		t.Fatalf("tenant service: %v", err)
	}
	guard, err := access.NewService(access.ServiceParams{
		Tenants:     tenantSvc,
		Admins:      adminroles.NewRepository(conn),
		Memberships: memberships.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("access service: %v", err)
	}

	ok, err := guard.HasAccess(ctx, resp.User.ID, "acme-law")
	if err != nil || !ok {
		t.Fatalf("expected owner access, ok=%v err=%v", ok, err)
	}
	ok, err = guard.HasAccess(ctx, uuid.New(), "acme-law")
	if err != nil || ok {
		t.Fatalf("expected stranger denied, ok=%v err=%v", ok, err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newRegisterService(t, conn)
	ctx := context.Background()

	if _, err := svc.Register(ctx, SignupRequest{Email: "a@acme.law", Password: "password1", FirmName: "Acme Law"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, SignupRequest{Email: "A@acme.law", Password: "password1", FirmName: "Other Firm"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected email conflict, got %v", err)
	}
	if pkgerrors.As(err).Message() != emailTakenMessage {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}

	_, err = svc.Register(ctx, SignupRequest{Email: "b@acme.law", Password: "password1", FirmName: "acme  LAW!"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected slug conflict, got %v", err)
	}
	if pkgerrors.As(err).Message() != "firm name already taken" {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}

	if n := countRows(t, conn, &models.User{}); n != 1 {
		t.Fatalf("failed sign-ups must not leave users behind, got %d", n)
	}
	if n := countRows(t, conn, &models.Tenant{}); n != 1 {
		t.Fatalf("expected one tenant, got %d", n)
	}
}

func TestRegisterValidation(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newRegisterService(t, conn)

	cases := map[string]struct {
		req   SignupRequest
		field string
	}{
		"bad email":       {req: SignupRequest{Email: "nope", Password: "password1", FirmName: "Acme Law"}, field: "email"},
		"short password":  {req: SignupRequest{Email: "a@acme.law", Password: "short", FirmName: "Acme Law"}, field: "password"},
		"short firm name": {req: SignupRequest{Email: "a@acme.law", Password: "password1", FirmName: "Ab"}, field: "firm_name"},
		"symbols only":    {req: SignupRequest{Email: "a@acme.law", Password: "password1", FirmName: "!!!!"}, field: "firm_name"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %T", typed.Details())
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected detail for %s, got %v", tc.field, details)
			}
		})
	}

	if n := countRows(t, conn, &models.User{}); n != 0 {
		t.Fatalf("validation failures must not write, got %d users", n)
	}
}

func TestRegisterBackendUnavailable(t *testing.T) {
	conn, _ := dbtest.Unavailable(t)
	svc := newRegisterService(t, conn)

	_, err := svc.Register(context.Background(), SignupRequest{Email: "a@acme.law", Password: "password1", FirmName: "Acme Law"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAdminRegisterIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{
		TxRunner:       dbtest.Client(conn),
		PasswordConfig: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("new admin register service: %v", err)
	}
	ctx := context.Background()

	first, err := svc.Register(ctx, AdminRegisterRequest{Email: "admin@lawscheduling.test", Password: "password1"})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if !first.Created || first.User == nil || first.Message != adminCreatedMessage {
		t.Fatalf("unexpected first response %+v", first)
	}
	isAdmin, err := adminroles.NewRepository(conn).IsAdmin(ctx, first.User.ID)
	if err != nil || !isAdmin {
		t.Fatalf("expected admin role, ok=%v err=%v", isAdmin, err)
	}

	second, err := svc.Register(ctx, AdminRegisterRequest{Email: "other@lawscheduling.test", Password: "password1"})
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if second.Created || second.User != nil || second.Message != adminExistsMessage {
		t.Fatalf("unexpected second response %+v", second)
	}
	if n := countRows(t, conn, &models.User{}); n != 1 {
		t.Fatalf("expected a single user, got %d", n)
	}
}

func TestAdminRegisterEmailTaken(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	if _, err := users.NewRepository(conn).Create(ctx, users.NewPrincipal{Email: "admin@lawscheduling.test", PasswordHash: "x"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{TxRunner: dbtest.Client(conn), PasswordConfig: testPasswordConfig})
	if err != nil {
		t.Fatalf("new admin register service: %v", err)
	}

	_, err = svc.Register(ctx, AdminRegisterRequest{Email: "admin@lawscheduling.test", Password: "password1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
