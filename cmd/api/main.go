package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/lawscheduling/lawscheduling-backend/api/routes"
	"github.com/lawscheduling/lawscheduling-backend/internal/access"
	"github.com/lawscheduling/lawscheduling-backend/internal/accounts"
	"github.com/lawscheduling/lawscheduling-backend/internal/adminroles"
	"github.com/lawscheduling/lawscheduling-backend/internal/auth"
	"github.com/lawscheduling/lawscheduling-backend/internal/leads"
	"github.com/lawscheduling/lawscheduling-backend/internal/mailtargeting"
	"github.com/lawscheduling/lawscheduling-backend/internal/memberships"
	"github.com/lawscheduling/lawscheduling-backend/internal/tenants"
	"github.com/lawscheduling/lawscheduling-backend/internal/users"
	"github.com/lawscheduling/lawscheduling-backend/pkg/auth/session"
	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/instance"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
	"github.com/lawscheduling/lawscheduling-backend/pkg/metrics"
	"github.com/lawscheduling/lawscheduling-backend/pkg/migrate"
	"github.com/lawscheduling/lawscheduling-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := buildServices(cfg, dbClient, sessionManager, registry)
	if err != nil {
		return err
	}
	services.DB = dbClient
	services.Cache = redisClient
	services.Sessions = sessionManager
	services.Gatherer = registry
	services.HTTP = metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func buildServices(cfg *config.Config, dbClient *db.Client, sessions *session.Manager, reg prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	tenantRepo := tenants.NewRepository(conn)
	membershipRepo := memberships.NewRepository(conn)
	adminRepo := adminroles.NewRepository(conn)

	tenantSvc, err := tenants.NewService(tenants.ServiceParams{
		Repo:        tenantRepo,
		Memberships: membershipRepo,
		Users:       userRepo,
		TxRunner:    dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}
	accessSvc, err := access.NewService(access.ServiceParams{
		Tenants:     tenantSvc,
		Admins:      adminRepo,
		Memberships: membershipRepo,
		Metrics:     metrics.NewAccessMetrics(reg),
	})
	if err != nil {
		return routes.Services{}, err
	}
	leadSvc, err := leads.NewService(leads.NewRepository(conn), tenantSvc, metrics.NewLeadMetrics(reg))
	if err != nil {
		return routes.Services{}, err
	}
	mailSvc, err := mailtargeting.NewService(mailtargeting.NewRepository(conn), tenantSvc)
	if err != nil {
		return routes.Services{}, err
	}
	accountSvc, err := accounts.NewService(accounts.NewRepository(conn), tenantSvc)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		TenantRepo:     tenantRepo,
		AdminRoles:     adminRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}
	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{TxRunner: dbClient, PasswordConfig: cfg.Password})
	if err != nil {
		return routes.Services{}, err
	}
	adminRegisterSvc, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{TxRunner: dbClient, PasswordConfig: cfg.Password})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authSvc,
		Register:      registerSvc,
		AdminRegister: adminRegisterSvc,
		Access:        accessSvc,
		Tenants:       tenantSvc,
		Leads:         leadSvc,
		MailTargeting: mailSvc,
		Accounts:      accountSvc,
	}, nil
}
