package validators

import (
	"encoding/json"
	"io"
	"net/http"

	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/validate"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody decodes a strict JSON body into dest and validates it.
func DecodeJSONBody(r *http.Request, dest any) error {
	if err := decode(r, dest, true); err != nil {
		return err
	}
	return validate.Check(dest)
}

// DecodeJSONObject decodes a free-form JSON object. Used by the public intake
// form, whose extra questions are not known ahead of time.
func DecodeJSONObject(r *http.Request) (map[string]any, error) {
	fields := map[string]any{}
	if err := decode(r, &fields, false); err != nil {
		return nil, err
	}
	return fields, nil
}

func decode(r *http.Request, dest any, strict bool) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}
