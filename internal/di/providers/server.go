package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/api"
	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/logger"
	"github.com/habitoapp/habito-server/internal/metrics"
	"github.com/habitoapp/habito-server/internal/service"
	"github.com/habitoapp/habito-server/internal/version"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.api.Close()
	return h.Server.Shutdown(ctx)
}

// ProvideAPI builds the HTTP handler with every route.
func ProvideAPI(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	httpMetrics := do.MustInvoke[*metrics.HTTP](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Profile:  do.MustInvoke[*service.ProfileService](i),
		Habits:   do.MustInvoke[*service.HabitService](i),
		Goals:    do.MustInvoke[*service.GoalService](i),
		Checks:   do.MustInvoke[*service.CheckService](i),
		Notes:    do.MustInvoke[*service.NoteService](i),
		Progress: do.MustInvoke[*service.ProgressService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
	}

	probes := []api.Probe{
		{Name: "database", Check: storeHandle.Ping},
		{Name: "sessions", Check: kvHandle.Ping},
	}

	return api.NewServer(services, probes, httpMetrics, api.Config{
		Version:        version.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthRateLimit:  cfg.Auth.RateLimit,
		AuthRateBurst:  cfg.Auth.RateBurst,
	}, log.Logger), nil
}

// ProvideHTTPServer starts serving in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "version", version.Version)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
