package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/metrics"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/service"
	"github.com/habitoapp/habito-server/internal/store/kv"
	"github.com/habitoapp/habito-server/internal/store/sqlite"
	"github.com/habitoapp/habito-server/internal/telemetry"
	"github.com/habitoapp/habito-server/internal/validation"
)

// testNow is a Wednesday afternoon in UTC.
var testNow = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

// testClock is a settable clock.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	metrics *metrics.HTTP
	clock   *testClock
}

type serverOption func(*Config, *[]Probe)

func withAuthRateLimit(perMinute, burst int) serverOption {
	return func(c *Config, _ *[]Probe) {
		c.AuthRateLimit = perMinute
		c.AuthRateBurst = burst
	}
}

func withProbe(p Probe) serverOption {
	return func(_ *Config, probes *[]Probe) {
		*probes = append(*probes, p)
	}
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions, err := kv.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	idx, err := search.Open(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	clock := &testClock{t: testNow}
	now := clock.Now
	v := validation.New()
	publisher := events.NewNoop()
	recorder := telemetry.NewNoop()
	calendar := service.NewCalendar(db, time.UTC, now)
	sessionService := service.NewSessionService(sessions, db, tokens, logger)

	services := &Services{
		Auth: service.NewAuthService(db, sessions, tokens, sessionService, service.LogNotifier{Logger: logger}, v,
			service.AuthConfig{DefaultTimezone: "UTC", ResetTTL: time.Hour}, logger),
		Profile:  service.NewProfileService(db, sessionService, idx, publisher, v, logger),
		Habits:   service.NewHabitService(db, idx, publisher, recorder, v, now, logger),
		Goals:    service.NewGoalService(db, idx, v, now, logger),
		Checks:   service.NewCheckService(db, calendar, publisher, recorder, logger),
		Notes:    service.NewNoteService(db, calendar, idx, publisher, logger),
		Progress: service.NewProgressService(db, db, db, calendar, recorder, logger),
		Search:   service.NewSearchService(idx, db, logger),
	}

	cfg := Config{Version: "test"}
	probes := []Probe{
		{Name: "database", Check: db.Ping},
		{Name: "sessions", Check: sessions.Ping},
	}
	for _, opt := range opts {
		opt(&cfg, &probes)
	}

	m := metrics.NewHTTP()
	s := NewServer(services, probes, m, cfg, logger)
	t.Cleanup(s.Close)

	return &testServer{Server: s, api: humatest.Wrap(t, s.API()), metrics: m, clock: clock}
}

// envelope is the decoded response wrapper.
type envelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func bearerHeader(token string) string {
	return "Authorization: Bearer " + token
}

// signup creates an account over HTTP and returns its access token.
func (ts *testServer) signup(t *testing.T, email string) AuthResponse {
	t.Helper()
	w := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":    email,
		"password": "correct horse battery",
		"name":     "Test User",
		"timezone": "UTC",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AuthResponse](t, w).Data
}

// createHabit adds a habit over HTTP.
func (ts *testServer) createHabit(t *testing.T, token, title, category string) HabitResponse {
	t.Helper()
	w := ts.api.Post("/api/v1/habits", bearerHeader(token), map[string]any{
		"title":    title,
		"category": category,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[HabitResponse](t, w).Data
}

func TestEnvelope_Success(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signup(t, "ana@example.com")

	w := ts.api.Get("/api/v1/profile", bearerHeader(user.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[UserResponse](t, w)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.True(t, env.Success)
	assert.Empty(t, env.Code)
	assert.Equal(t, "ana@example.com", env.Data.Email)
	assert.Equal(t, "Test User", env.Data.DisplayName)
}

func TestEnvelope_Errors(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.signup(t, "ana@example.com")
	token := bearerHeader(user.AccessToken)

	tests := []struct {
		name   string
		do     func() *httptest.ResponseRecorder
		status int
		code   string
	}{
		{
			name:   "missing token",
			do:     func() *httptest.ResponseRecorder { return ts.api.Get("/api/v1/habits") },
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{
			name:   "garbage token",
			do:     func() *httptest.ResponseRecorder { return ts.api.Get("/api/v1/habits", bearerHeader("v4.local.nope")) },
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{
			name:   "unknown habit",
			do:     func() *httptest.ResponseRecorder { return ts.api.Get("/api/v1/habits/habit-missing", token) },
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "malformed day",
			do: func() *httptest.ResponseRecorder {
				return ts.api.Get("/api/v1/checks?from=2024-02-30&to=2024-03-06", token)
			},
			status: http.StatusBadRequest,
			code:   "INVALID_DATE",
		},
		{
			name: "schema violation",
			do: func() *httptest.ResponseRecorder {
				return ts.api.Post("/api/v1/habits", token, map[string]any{"title": ""})
			},
			status: http.StatusUnprocessableEntity,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.do()
			require.Equal(t, tt.status, w.Code, w.Body.String())

			env := decode[json.RawMessage](t, w)
			assert.False(t, env.Success)
			assert.Equal(t, EnvelopeVersion, env.Version)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["sessions"].Status)
}

func TestHealth_ReportsFailingProbe(t *testing.T) {
	ts := setupTestServer(t, withProbe(Probe{
		Name:  "events",
		Check: func(context.Context) error { return errors.New("broker unreachable") },
	}))

	w := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[HealthResponse](t, w)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.Equal(t, "unhealthy", env.Data.Components["events"].Status)
	assert.Equal(t, "broker unreachable", env.Data.Components["events"].Message)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Get("/health")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `habito_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, withAuthRateLimit(2, 2))

	body := map[string]any{"email": "nobody@example.com", "password": "whatever-long"}
	for range 2 {
		w := ts.api.Post("/api/v1/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := ts.api.Post("/api/v1/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode[json.RawMessage](t, w).Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}
