// Package access decides whether a principal may enter a tenant-scoped or
// admin-scoped area. Every lookup failure is a denial.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/metrics"
)

// Scope selects which rule a guard applies.
type Scope string

const (
	// ScopeTenant admits members of the tenant and administrators.
	ScopeTenant Scope = "tenant"
	// ScopeAdmin admits administrators only.
	ScopeAdmin Scope = "admin"
)

type Outcome string

const (
	Authorized Outcome = "authorized"
	Denied     Outcome = "denied"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonError           Reason = "error"
)

// Decision is the terminal state of one guard check.
type Decision struct {
	Outcome  Outcome
	Reason   Reason
	TenantID uuid.UUID
	Err      error
}

func (d Decision) Authorized() bool {
	return d.Outcome == Authorized
}

type tenantResolver interface {
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
}

type adminRoles interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type membershipChecker interface {
	Exists(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)
}

// Service exposes the two primitive checks and the guard decision.
type Service interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	HasAccess(ctx context.Context, userID uuid.UUID, tenantSlug string) (bool, error)
	Check(ctx context.Context, principal *uuid.UUID, scope Scope, tenantSlug string) Decision
}

type ServiceParams struct {
	Tenants     tenantResolver
	Admins      adminRoles
	Memberships membershipChecker
	Metrics     *metrics.AccessMetrics
}

type service struct {
	tenants     tenantResolver
	admins      adminRoles
	memberships membershipChecker
	metrics     *metrics.AccessMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant resolver required")
	}
	if params.Admins == nil {
		return nil, fmt.Errorf("admin roles repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{
		tenants:     params.Tenants,
		admins:      params.Admins,
		memberships: params.Memberships,
		metrics:     params.Metrics,
	}, nil
}

func (s *service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check admin role")
	}
	return ok, nil
}

// HasAccess is isAdmin OR membership in the resolved tenant. An unresolved
// slug is never accessible.
func (s *service) HasAccess(ctx context.Context, userID uuid.UUID, tenantSlug string) (bool, error) {
	tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.hasAccessTo(ctx, userID, tenantID)
}

func (s *service) hasAccessTo(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	member, err := s.memberships.Exists(ctx, userID, tenantID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return member, nil
}

// Check runs the guard: principal, then tenant resolution, then admin role,
// then membership, one after another. It never returns Authorized when any
// step fails.
func (s *service) Check(ctx context.Context, principal *uuid.UUID, scope Scope, tenantSlug string) Decision {
	decision := s.decide(ctx, principal, scope, tenantSlug)
	s.metrics.ObserveDecision(string(scope), string(decision.Outcome), string(decision.Reason))
	return decision
}

func (s *service) decide(ctx context.Context, principal *uuid.UUID, scope Scope, tenantSlug string) Decision {
	if principal == nil || *principal == uuid.Nil {
		return deny(ReasonUnauthenticated, nil)
	}
	if err := ctx.Err(); err != nil {
		return deny(ReasonError, err)
	}

	switch scope {
	case ScopeAdmin:
		admin, err := s.IsAdmin(ctx, *principal)
		if err != nil {
			return deny(ReasonError, err)
		}
		if !admin {
			return deny(ReasonForbidden, nil)
		}
		return Decision{Outcome: Authorized}

	case ScopeTenant:
		tenantID, err := s.tenants.ResolveID(ctx, tenantSlug)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return deny(ReasonForbidden, nil)
			}
			return deny(ReasonError, err)
		}
		ok, err := s.hasAccessTo(ctx, *principal, tenantID)
		if err != nil {
			return deny(ReasonError, err)
		}
		if !ok {
			return deny(ReasonForbidden, nil)
		}
		return Decision{Outcome: Authorized, TenantID: tenantID}
	}

	return deny(ReasonError, fmt.Errorf("unknown access scope %q", scope))
}

func deny(reason Reason, err error) Decision {
	return Decision{Outcome: Denied, Reason: reason, Err: err}
}
