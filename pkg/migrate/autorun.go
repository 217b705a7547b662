package migrate

import (
	"context"
	"fmt"

	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"github.com/lawscheduling/lawscheduling-backend/pkg/logger"
)

// MaybeRunDev prepares the schema automatically when the app is running in dev
// mode and the feature flag is enabled. SQLite databases are built with
// AutoMigrate; Postgres runs the goose migrations. Reference data is seeded in
// both cases.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver}
	ctx = logg.WithFields(ctx, meta)

	if cfg.FeatureFlags.UseSQLite {
		logg.Info(ctx, "running AutoMigrate (dev sqlite)")
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	} else {
		sqlDB, err := client.SQL()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		migrator, err := New(sqlDB, nil, logg)
		if err != nil {
			return err
		}
		logg.Info(ctx, "running goose migrations (dev auto-run)")
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	}

	if err := SeedReference(ctx, client.DB()); err != nil {
		return err
	}

	logg.Info(ctx, "dev migrations completed")
	return nil
}
