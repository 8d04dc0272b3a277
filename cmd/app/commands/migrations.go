package commands

import (
	"errors"
	"log/slog"

	"github.com/allisson/roleguard/internal/config"
	"github.com/allisson/roleguard/internal/database"
	"github.com/allisson/roleguard/migrations"
)

var errMigrationsNeedSQL = errors.New("migrations require the postgres or mysql driver")

// RunMigrations applies the embedded migrations for driver.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver == config.DriverMemory {
		return errMigrationsNeedSQL
	}

	logger.Info("running database migrations", slog.String("driver", driver))
	return database.Migrate(migrations.FS, driver, connectionString, logger)
}
