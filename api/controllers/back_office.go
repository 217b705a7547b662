package controllers

import (
	"net/http"
	"strings"

	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	"github.com/lawscheduling/lawscheduling-backend/api/validators"
	"github.com/lawscheduling/lawscheduling-backend/internal/accounts"
	"github.com/lawscheduling/lawscheduling-backend/internal/leads"
	"github.com/lawscheduling/lawscheduling-backend/internal/mailtargeting"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

// LeadsList returns the firm's leads, newest first. With
// ?include=responses each lead carries its question responses.
func LeadsList(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("include"), "responses") {
			list, err := svc.ListWithResponses(r.Context(), tenantSlug(r))
			responses.WriteList(r.Context(), logg, w, list, err)
			return
		}
		list, err := svc.List(r.Context(), tenantSlug(r))
		responses.WriteList(r.Context(), logg, w, list, err)
	}
}

func AccountGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Get(r.Context(), tenantSlug(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// AccountUpdate applies a partial update. Absent fields keep their value.
func AccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body accounts.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		settings, err := svc.Update(r.Context(), tenantSlug(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// MailSettingsList returns the firm's mail settings with their areas of law.
func MailSettingsList(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListSettingsWithAreas(r.Context(), tenantSlug(r))
		responses.WriteList(r.Context(), logg, w, list, err)
	}
}

// MailSettingsCreate adds a (state, county) setting. A duplicate pair is a
// REJECTED answer rather than a server error.
func MailSettingsCreate(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body mailtargeting.AddSettingInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddSetting(r.Context(), tenantSlug(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Rejected {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRejected, result.Reason))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Setting)
	}
}

// MailSettingAreas lists the areas of law attached to one setting.
func MailSettingAreas(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settingID, err := validators.PathUUID(r, "settingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		areas, err := svc.ListAreasForSetting(r.Context(), tenantSlug(r), settingID)
		responses.WriteList(r.Context(), logg, w, areas, err)
	}
}
