package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","password":"x"}`))
	var body loginBody
	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"x","role":"admin"}`))
	var body loginBody
	if err := DecodeJSONBody(r, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONObjectKeepsExtras(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Jane","case_type":"divorce","urgent":true}`))
	fields, err := DecodeJSONObject(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fields["case_type"] != "divorce" || fields["urgent"] != true {
		t.Fatalf("unexpected fields %v", fields)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`[1,2]`))
	if _, err := DecodeJSONObject(r); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for non-object body, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=20&bad=x&big=500", nil)
	if v, err := ParseQueryInt(r, "limit", 10, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected 20, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(r, "missing", 10, 1, 100); err != nil || v != 10 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(r, "bad", 10, 1, 100); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
	if _, err := ParseQueryInt(r, "big", 10, 1, 100); err == nil {
		t.Fatalf("expected error for out of range value")
	}
}

func TestSanitizeFields(t *testing.T) {
	fields, err := SanitizeFields(map[string]any{"name": "  Jane  ", "note": "ééé", "count": 3}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["name"] != "Jane" {
		t.Fatalf("unexpected name %q", fields["name"])
	}
	if fields["note"] != "ééé" {
		t.Fatalf("multi-byte characters count once, got %q", fields["note"])
	}
	if fields["count"] != 3 {
		t.Fatalf("non-strings must pass through")
	}
}

func TestSanitizeFieldsRejectsOversizeValues(t *testing.T) {
	_, err := SanitizeFields(map[string]any{
		"name":         "Jane",
		"case_details": strings.Repeat("x", 11),
	}, 10)
	if err == nil {
		t.Fatalf("expected oversize value to be rejected")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := appErr.Details().(map[string]string)
	if !ok || details["case_details"] == "" {
		t.Fatalf("expected case_details in details, got %#v", appErr.Details())
	}
	if _, ok := details["name"]; ok {
		t.Fatalf("name is within bounds and must not be reported")
	}
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"14", 14, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"illinois", 0, false},
	}
	for _, tt := range tests {
		r := withRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "stateId", tt.raw)
		got, err := PathID(r, "stateId")
		if tt.ok != (err == nil) || got != tt.want {
			t.Fatalf("PathID(%q) = %d, %v", tt.raw, got, err)
		}
		if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()
	r := withRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "settingId", id.String())
	if got, err := PathUUID(r, "settingId"); err != nil || got != id {
		t.Fatalf("PathUUID = %s, %v", got, err)
	}

	r = withRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "settingId", "not-a-uuid")
	_, err := PathUUID(r, "settingId")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if details, _ := typed.Details().(map[string]string); details["settingId"] != "must be a uuid" {
		t.Fatalf("unexpected details %v", typed.Details())
	}
}
