package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/civicroom/memberdesk/internal/config"
	"github.com/civicroom/memberdesk/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Embedded migrations target postgres; other dialects are managed
		// out of band.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.Environment == "development" {
			return seed.EnsureDemoOrg(conn)
		}
		return nil
	}),
)
