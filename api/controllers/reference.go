package controllers

import (
	"net/http"

	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	"github.com/lawscheduling/lawscheduling-backend/api/validators"
	"github.com/lawscheduling/lawscheduling-backend/internal/mailtargeting"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

// ReferenceStates lists every state, ordered by name.
func ReferenceStates(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states, err := svc.GetStates(r.Context())
		responses.WriteList(r.Context(), logg, w, states, err)
	}
}

// ReferenceCounties lists the counties of one state.
func ReferenceCounties(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateID, err := validators.PathID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		counties, err := svc.GetCounties(r.Context(), stateID)
		responses.WriteList(r.Context(), logg, w, counties, err)
	}
}

// ReferenceAreasOfLaw lists every practice area, ordered by name.
func ReferenceAreasOfLaw(svc mailtargeting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		areas, err := svc.GetAreasOfLaw(r.Context())
		responses.WriteList(r.Context(), logg, w, areas, err)
	}
}
