package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/requisition-go/internal/adapters/plan"
	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/config"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/database"
)

// loadConfig loads the configuration named by --config, applying --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the console logger described by cfg. The returned
// closer releases the log file, if any.
func newLogger(cfg config.LoggingConfig) (*logging.ConsoleLogger, io.Closer, error) {
	switch cfg.Output {
	case "stdout":
		return logging.NewConsoleLogger(os.Stdout, cfg.Format, cfg.Level), io.NopCloser(nil), nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logging.NewConsoleLogger(f, cfg.Format, cfg.Level), f, nil
	default:
		return logging.NewConsoleLogger(os.Stderr, cfg.Format, cfg.Level), io.NopCloser(nil), nil
	}
}

// withLogger attaches the configured logger to ctx
func withLogger(ctx context.Context, cfg *config.Config) (context.Context, func(), error) {
	logger, closer, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logging.WithLogger(ctx, logger), func() { _ = closer.Close() }, nil
}

// openDatabase connects and migrates the configured database
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// loadPlan parses the plan at path with the configured exchange pricing
func loadPlan(cfg *config.Config, path string) (*plan.Plan, error) {
	if path == "" {
		return nil, fmt.Errorf("--plan flag is required")
	}
	return plan.NewLoader(cfg.Fulfillment.Pricing()).LoadFile(path)
}
