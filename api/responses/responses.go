package responses

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
	"github.com/lawscheduling/lawscheduling-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteList answers a list read. A DEPENDENCY_ERROR alongside data means the
// read degraded: the client gets 200 with the (empty) data and a notice.
// Any other error is written as a regular error response.
func WriteList(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, data any, err error) {
	if err == nil {
		WriteSuccess(w, data)
		return
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) || data == nil {
		WriteError(ctx, logg, w, err)
		return
	}
	WriteDegraded(ctx, logg, w, data, err)
}

// WriteDegraded logs err and answers 200 with data plus a notice describing
// the backend failure.
func WriteDegraded(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, data any, err error) {
	code := pkgerrors.CodeDependency
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	meta := pkgerrors.MetadataFor(code)
	if logg != nil && err != nil {
		logg.Warn(logg.WithFields(ctx, pkgerrors.LogFields(err)), "request.degraded")
	}
	writeJSON(w, http.StatusOK, types.DegradedEnvelope{
		Data: data,
		Notice: types.Notice{
			Code:      string(code),
			Message:   meta.PublicMessage,
			Retryable: meta.Retryable,
		},
	})
}

// WriteError answers with the typed error's status and public message.
// Server-side failures are logged once here.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.Normalize(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: typed.PublicMessage(),
		},
	}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(logg.WithFields(ctx, pkgerrors.LogFields(typed)), "request.error", typed)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
