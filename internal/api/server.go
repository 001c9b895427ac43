// Package api serves the Habito HTTP API: huma operations on a chi router
// under /api/v1, wrapped in a versioned response envelope.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/habitoapp/habito-server/internal/metrics"
	"github.com/habitoapp/habito-server/internal/ratelimit"
	"github.com/habitoapp/habito-server/internal/service"
)

// Services groups the business services behind the handlers.
type Services struct {
	Auth     *service.AuthService
	Profile  *service.ProfileService
	Habits   *service.HabitService
	Goals    *service.GoalService
	Checks   *service.CheckService
	Notes    *service.NoteService
	Progress *service.ProgressService
	Search   *service.SearchService
}

// Probe checks one dependency for /health.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config holds the HTTP-facing settings.
type Config struct {
	Version        string
	AllowedOrigins []string
	AuthRateLimit  int // requests per minute per client IP
	AuthRateBurst  int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	probes          []Probe
	metrics         *metrics.HTTP
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates the HTTP handler with all routes configured. m may be
// nil to disable /metrics.
func NewServer(services *Services, probes []Probe, m *metrics.HTTP, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		probes:   probes,
		metrics:  m,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if cfg.AuthRateLimit > 0 {
		s.authRateLimiter = ratelimit.PerMinute(cfg.AuthRateLimit, max(cfg.AuthRateBurst, 1))
	}

	s.setupMiddleware(cfg)

	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	humaConfig := huma.DefaultConfig("Habito API", cfg.Version)
	humaConfig.Info.Description = "Habit tracking: daily checks, streaks, consistency, heatmap and life balance."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerProfileRoutes()
	s.registerHabitRoutes()
	s.registerCheckRoutes()
	s.registerGoalRoutes()
	s.registerNoteRoutes()
	s.registerProgressRoutes()
	s.registerSearchRoutes()

	if m != nil {
		s.router.Handle("/metrics", m.Handler())
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

func (s *Server) setupMiddleware(cfg Config) {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if s.authRateLimiter != nil {
		s.router.Use(rateLimitAuth(s.authRateLimiter, s.logger))
	}
	s.router.Use(authMiddleware(s.services.Auth))
}

// bearer marks an operation as requiring an access token.
var bearer = []map[string][]string{{"bearer": {}}}
