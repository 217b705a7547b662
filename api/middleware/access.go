package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	"github.com/lawscheduling/lawscheduling-backend/internal/access"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

const (
	// TenantSlugParam is the chi URL parameter carrying the firm slug.
	TenantSlugParam = "tenantSlug"

	authRequiredMessage = "authentication required"
	accessDeniedMessage = "access denied"
)

// RequireTenantAccess lets the request through only when the principal may
// act for the tenant named in the URL. Guarded content is never rendered
// before the decision is made.
func RequireTenantAccess(guard access.Service, loginPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return requireAccess(guard, access.ScopeTenant, loginPath, logg)
}

// RequireAdmin lets only administrators through.
func RequireAdmin(guard access.Service, loginPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return requireAccess(guard, access.ScopeAdmin, loginPath, logg)
}

func requireAccess(guard access.Service, scope access.Scope, loginPath string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tenantSlug := ""
			if scope == access.ScopeTenant {
				tenantSlug = chi.URLParam(r, TenantSlugParam)
				if logg != nil {
					ctx = logg.WithTenantSlug(ctx, tenantSlug)
				}
			}

			decision := guard.Check(ctx, PrincipalFromContext(ctx), scope, tenantSlug)
			if ctx.Err() != nil {
				return
			}
			if decision.Authorized() {
				if scope == access.ScopeTenant {
					ctx = withTenantID(ctx, decision.TenantID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if logg != nil {
				logCtx := logg.WithFields(ctx, map[string]any{
					"scope":  string(scope),
					"reason": string(decision.Reason),
				})
				if decision.Err != nil {
					logg.Error(logCtx, "access.denied", decision.Err)
				} else {
					logg.Info(logCtx, "access.denied")
				}
			}
			responses.WriteError(ctx, nil, w, denial(decision, loginPath))
		})
	}
}

func denial(decision access.Decision, loginPath string) error {
	details := map[string]string{"redirect": loginPath}
	if decision.Reason == access.ReasonUnauthenticated {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, authRequiredMessage).WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage).WithDetails(details)
}
