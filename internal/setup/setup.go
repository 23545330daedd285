package setup

import (
	"log"

	"github.com/twdlabs/pagebot/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles the core dependencies needed by the application.
type App struct {
	Config     *config.Config // Application configuration
	Logger     *zap.Logger    // Main application logger
	LogManager *LogManager    // Log management system
}

// InitializeApp bootstraps the application dependencies in the correct order.
// The logging system comes up right after configuration so setup issues get captured.
func InitializeApp(configPath string) (*App, error) {
	cfg, configDir, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logManager := NewLogManager(&cfg.Logging)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("configDir", configDir))

	return &App{
		Config:     cfg,
		Logger:     logger,
		LogManager: logManager,
	}, nil
}

// Cleanup flushes buffered logs before shutdown.
func (a *App) Cleanup() {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}
