package controllers

import (
	"net/http"

	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	"github.com/lawscheduling/lawscheduling-backend/api/validators"
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
	"github.com/lawscheduling/lawscheduling-backend/pkg/pagination"
)

// ManageFirmsList is the administrator's overview of every firm.
func ManageFirmsList(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListOverview(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if page == nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(r.Context(), logg, w, page, err)
	}
}

// ManageFirmMembersAdd connects an existing principal to a firm.
func ManageFirmMembersAdd(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tenants.ConnectMemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ConnectMember(r.Context(), tenantSlug(r), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"status": "connected",
			"email":  body.Email,
		})
	}
}
