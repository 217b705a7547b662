package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lawscheduling/lawscheduling-backend/api/middleware"
	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	"github.com/lawscheduling/lawscheduling-backend/api/validators"
	"github.com/lawscheduling/lawscheduling-backend/internal/leads"
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

// maxIntakeValueLen is the longest accepted free-text intake answer, in characters.
const maxIntakeValueLen = 2000

func tenantSlug(r *http.Request) string {
	return chi.URLParam(r, middleware.TenantSlugParam)
}

// FirmPublic renders the public face of a firm: name and slug only.
func FirmPublic(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := svc.Resolve(r.Context(), tenantSlug(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant.Public())
	}
}

// FirmAvailability reports whether a slug is still free for sign-up.
func FirmAvailability(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := tenantSlug(r)
		available, err := svc.SlugAvailable(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"slug": slug, "available": available})
	}
}

// FirmIntake accepts a public intake form submission. Name, email and phone
// are required; every other field is stored as a question response.
func FirmIntake(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := validators.DecodeJSONObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields, err = validators.SanitizeFields(fields, maxIntakeValueLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Create(r.Context(), tenantSlug(r), fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}
