package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/logger"
)

// ProvideConfig loads configuration from the process flags and environment.
// Callers that already hold a *config.Config register it with do.ProvideValue
// instead.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Habito server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"default_timezone", cfg.App.DefaultTimezone,
	)
	return log, nil
}

// ProvideSlogLogger exposes the underlying slog.Logger.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	return do.MustInvoke[*logger.Logger](i).Logger, nil
}
