package commands

import (
	"fmt"

	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/config"
	"github.com/gcammarata/wirechat/pkg/store"
)

// initLogger configures the structured logger from the loaded config.
func initLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStore opens the persistent store from the loaded config.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}
