// Package cli provides common initialization for the domus binaries:
// cmd/domus, cmd/domus-worker, and cmd/domus-admin.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"domus/internal/config"
	applog "domus/internal/log"
	"domus/internal/storage"
)

// Bootstrap loads the optional .env file, sets up the default structured
// logger, and returns a validated configuration. Exits on invalid config.
func Bootstrap(component string) (*applog.Logger, *config.Config) {
	// Errors are ignored; the .env file only exists in local development.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: component,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return logger, cfg
}

// OpenRepository opens the SQLite repository, exiting on failure.
func OpenRepository(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
