package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawscheduling/lawscheduling-backend/api/controllers"
	"github.com/lawscheduling/lawscheduling-backend/api/middleware"
	"github.com/lawscheduling/lawscheduling-backend/internal/access"
	"github.com/lawscheduling/lawscheduling-backend/internal/accounts"
	"github.com/lawscheduling/lawscheduling-backend/internal/auth"
	"github.com/lawscheduling/lawscheduling-backend/internal/leads"
	"github.com/lawscheduling/lawscheduling-backend/internal/mailtargeting"
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/pkg/auth/session"
	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
	"github.com/lawscheduling/lawscheduling-backend/pkg/metrics"
	"github.com/lawscheduling/lawscheduling-backend/pkg/redis"
)

// Cache is the Redis surface the HTTP layer needs: readiness, rate limit
// windows and idempotency records.
type Cache interface {
	redis.Pinger
	redis.IdempotencyStore
	middleware.WindowLimiter
}

// Services bundles everything the router hands to controllers. A nil Cache
// disables rate limiting and idempotency; a nil Sessions skips the
// revocation check on access tokens.
type Services struct {
	DB       controllers.Pinger
	Cache    Cache
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Access        access.Service
	Tenants       tenants.Service
	Leads         leads.Service
	MailTargeting mailtargeting.Service
	Accounts      accounts.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.ClientAddress(cfg.App.TrustProxyHeaders),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(svc.HTTP),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	var (
		limiter     middleware.WindowLimiter
		idempotency redis.IdempotencyStore
	)
	readiness := map[string]controllers.Pinger{"db": svc.DB}
	if svc.Cache != nil {
		limiter, idempotency = svc.Cache, svc.Cache
		readiness["redis"] = svc.Cache
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	loginPath := cfg.App.LoginPath

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if svc.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(signupPolicy, limiter, logg),
			middleware.Idempotency(middleware.WriteIdempotency, idempotency, logg),
		).Post("/signup", controllers.AuthSignup(svc.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, svc.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
			r.Get("/session", controllers.AuthSession(svc.Auth, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, limiter, logg)).
			Post("/register", controllers.AdminAuthRegister(svc.AdminRegister, cfg, logg))
	})

	r.Route("/api/v1/reference", func(r chi.Router) {
		r.Get("/states", controllers.ReferenceStates(svc.MailTargeting, logg))
		r.Get("/states/{stateId}/counties", controllers.ReferenceCounties(svc.MailTargeting, logg))
		r.Get("/areas-of-law", controllers.ReferenceAreasOfLaw(svc.MailTargeting, logg))
	})

	r.Route("/api/v1/firms/{tenantSlug}", func(r chi.Router) {
		r.Get("/", controllers.FirmPublic(svc.Tenants, logg))
		r.Get("/availability", controllers.FirmAvailability(svc.Tenants, logg))
		r.With(
			middleware.IntakeRateLimit(cfg.IntakeRateLimit.Window, cfg.IntakeRateLimit.IPLimit, limiter, logg),
			middleware.Idempotency(middleware.IntakeIdempotency, idempotency, logg),
		).Post("/intake", controllers.FirmIntake(svc.Leads, logg))

		r.Route("/back", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, svc.Sessions, logg))
			r.Use(middleware.RequireTenantAccess(svc.Access, loginPath, logg))

			r.Get("/leads", controllers.LeadsList(svc.Leads, logg))
			r.Get("/account", controllers.AccountGet(svc.Accounts, logg))
			r.Patch("/account", controllers.AccountUpdate(svc.Accounts, logg))
			r.Get("/mail-settings", controllers.MailSettingsList(svc.MailTargeting, logg))
			r.With(middleware.Idempotency(middleware.WriteIdempotency, idempotency, logg)).Post("/mail-settings", controllers.MailSettingsCreate(svc.MailTargeting, logg))
			r.Get("/mail-settings/{settingId}/areas", controllers.MailSettingAreas(svc.MailTargeting, logg))
		})
	})

	r.Route("/api/v1/manage", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, svc.Sessions, logg))
		r.Use(middleware.RequireAdmin(svc.Access, loginPath, logg))

		r.Get("/firms", controllers.ManageFirmsList(svc.Tenants, logg))
		r.With(middleware.Idempotency(middleware.MemberIdempotency, idempotency, logg)).Post("/firms/{tenantSlug}/members", controllers.ManageFirmMembersAdd(svc.Tenants, logg))
	})

	return r
}
