package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
	pkgredis "github.com/lawscheduling/lawscheduling-backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// claimTTL bounds how long a crashed request can hold a key.
	claimTTL = time.Minute
)

// IdempotencyPolicy configures one write route. Without Required a missing
// key runs the handler normally.
type IdempotencyPolicy struct {
	TTL      time.Duration
	Required bool
}

var (
	IntakeIdempotency = IdempotencyPolicy{TTL: 7 * 24 * time.Hour}
	WriteIdempotency  = IdempotencyPolicy{TTL: 24 * time.Hour}
	MemberIdempotency = IdempotencyPolicy{TTL: 24 * time.Hour, Required: true}
)

// replay is what a key maps to. A record with Pending set is a claim held
// by a request that has not finished yet.
type replay struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency replays the first completed response for a repeated
// Idempotency-Key. Keys are scoped to caller, method and path; reusing one
// with a different body is refused. Server errors release the key so the
// client can retry.
func Idempotency(policy IdempotencyPolicy, store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if store == nil || (clientKey == "" && !policy.Required) {
				next.ServeHTTP(w, r)
				return
			}
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyHeader+" header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			claim := replay{Pending: true, RequestHash: hex.EncodeToString(sum[:])}
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)

			claimed, err := store.SetNX(ctx, key, mustJSON(claim), claimTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				answerDuplicate(w, r, store, key, claim.RequestHash, logg)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "release idempotency key failed")
				}
				return
			}
			done := replay{
				RequestHash: claim.RequestHash,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			}
			if err := store.Set(ctx, key, mustJSON(done), policy.TTL); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "persist idempotency record failed")
			}
		})
	}
}

func answerDuplicate(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// claim expired between SetNX and Get
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	}

	var prior replay
	if err := json.Unmarshal([]byte(stored), &prior); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency record"))
		return
	}
	switch {
	case prior.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case prior.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
	default:
		body, _ := base64.StdEncoding.DecodeString(prior.Body)
		if prior.ContentType != "" {
			w.Header().Set("Content-Type", prior.ContentType)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(prior.Status)
		_, _ = w.Write(body)
	}
}

func mustJSON(v replay) string {
	payload, _ := json.Marshal(v)
	return string(payload)
}

// responseCapture tees the response so it can be stored for replay.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
