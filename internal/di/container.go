// Package di wires the Habito server with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/api"
	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/di/providers"
	"github.com/habitoapp/habito-server/internal/logger"
	"github.com/habitoapp/habito-server/internal/service"
)

// NewContainer creates the container. A non-nil cfg is used as is;
// otherwise configuration is loaded from flags and the environment.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	if cfg != nil {
		do.ProvideValue(injector, cfg)
	} else {
		do.Provide(injector, providers.ProvideConfig)
	}
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Observability and events
	do.Provide(injector, providers.ProvidePublisher)
	do.Provide(injector, providers.ProvideRecorder)
	do.Provide(injector, providers.ProvideHTTPMetrics)

	// Auth
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)

	// Business services
	do.Provide(injector, providers.ProvideCalendar)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideHabitService)
	do.Provide(injector, providers.ProvideGoalService)
	do.Provide(injector, providers.ProvideCheckService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideProgressService)
	do.Provide(injector, providers.ProvideSearchService)

	// Workers
	do.Provide(injector, providers.ProvideKVGarbageJob)

	// Server
	do.Provide(injector, providers.ProvideAPI)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every service and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.KVHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.PublisherHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.RecorderHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.HabitService](injector)
	_ = do.MustInvoke[*service.GoalService](injector)
	_ = do.MustInvoke[*service.CheckService](injector)
	_ = do.MustInvoke[*service.NoteService](injector)
	_ = do.MustInvoke[*service.ProgressService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Workers
	_ = do.MustInvoke[*providers.KVGarbageJob](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)
	return nil
}
