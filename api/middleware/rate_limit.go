package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lawscheduling/lawscheduling-backend/api/responses"
	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

const maxRateLimitBody = 1 << 20

// WindowLimiter applies a fixed-window limit to a scope.
type WindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// rateRule is one counter a request is charged against. subject returns ""
// when the rule does not apply to the request.
type rateRule struct {
	name    string
	limit   int
	window  time.Duration
	subject func(r *http.Request, body []byte) string
}

type rateLimiter struct {
	event    string
	limiter  WindowLimiter
	rules    []rateRule
	readBody bool
	// failOpen lets requests through when the limiter is unreachable.
	failOpen bool
	logg     *logger.Logger
}

// AuthRateLimitPolicy throttles one credential endpoint per client IP and
// per submitted email.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{Name: name, Window: window, IPLimit: ipLimit, EmailLimit: emailLimit}
}

// AuthRateLimit guards sign-in and sign-up. It fails closed: without the
// limiter a credential endpoint answers DEPENDENCY_ERROR.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	rl := &rateLimiter{event: "auth.rate_limit", limiter: limiter, logg: logg, readBody: policy.EmailLimit > 0}
	if policy.IPLimit > 0 {
		rl.rules = append(rl.rules, rateRule{
			name:   "ip",
			limit:  policy.IPLimit,
			window: policy.Window,
			subject: func(r *http.Request, _ []byte) string {
				return policy.Name + ":ip:" + clientIP(r)
			},
		})
	}
	if policy.EmailLimit > 0 {
		rl.rules = append(rl.rules, rateRule{
			name:   "email",
			limit:  policy.EmailLimit,
			window: policy.Window,
			subject: func(_ *http.Request, body []byte) string {
				email := emailFromBody(body)
				if email == "" {
					return ""
				}
				return policy.Name + ":email:" + hashValue(email)
			},
		})
	}
	return rl.middleware
}

// IntakeRateLimit throttles anonymous intake submissions per client IP and
// firm. A limiter failure lets the submission through.
func IntakeRateLimit(window time.Duration, ipLimit int, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	rl := &rateLimiter{event: "intake.rate_limit", limiter: limiter, logg: logg, failOpen: true}
	if ipLimit > 0 {
		rl.rules = append(rl.rules, rateRule{
			name:   "ip",
			limit:  ipLimit,
			window: window,
			subject: func(r *http.Request, _ []byte) string {
				return "intake:" + chi.URLParam(r, TenantSlugParam) + ":" + clientIP(r)
			},
		})
	}
	return rl.middleware
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	active := rl.rules[:0:0]
	for _, rule := range rl.rules {
		if rule.window > 0 && rule.limit > 0 {
			active = append(active, rule)
		}
	}
	if rl.limiter == nil || len(active) == 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body []byte
		if rl.readBody {
			var err error
			body, err = io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
			if err != nil {
				responses.WriteError(ctx, rl.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		for _, rule := range active {
			subject := rule.subject(r, body)
			if subject == "" {
				continue
			}
			allowed, count, err := rl.limiter.FixedWindowAllow(ctx, subject, int64(rule.limit), rule.window)
			if err != nil {
				if rl.failOpen {
					if rl.logg != nil {
						rl.logg.Warn(rl.logg.WithField(ctx, "error", err.Error()), rl.event+".unavailable")
					}
					break
				}
				responses.WriteError(ctx, rl.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if rl.logg != nil {
					rl.logg.Warn(rl.logg.WithFields(ctx, map[string]any{
						"rule":           rule.name,
						"attempts":       count,
						"limit":          rule.limit,
						"window_seconds": int(rule.window.Seconds()),
					}), rl.event+".blocked")
				}
				// the window's start is unknown here, so advertise the whole window
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rule.window.Seconds()))))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ClientAddress rewrites RemoteAddr from X-Forwarded-For / X-Real-IP when the
// server sits behind a trusted proxy. Otherwise those headers are ignored and
// per-IP limits key on the socket peer.
func ClientAddress(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return chimw.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
