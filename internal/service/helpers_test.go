package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store/kv"
	"github.com/habitoapp/habito-server/internal/store/sqlite"
	"github.com/habitoapp/habito-server/internal/validation"
)

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

// recordingPublisher keeps published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// countingRecorder counts telemetry calls.
type countingRecorder struct {
	mu       sync.Mutex
	checks   map[bool]int
	views    map[string]int
	habitOps []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{checks: map[bool]int{}, views: map[string]int{}}
}

func (r *countingRecorder) CheckToggled(_ context.Context, completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[completed]++
}

func (r *countingRecorder) ProgressComputed(_ context.Context, view string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[view]++
}

func (r *countingRecorder) HabitsChanged(_ context.Context, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habitOps = append(r.habitOps, op)
}

func (r *countingRecorder) Shutdown(context.Context) error { return nil }

// captureNotifier keeps the last reset token per user.
type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, user *domain.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = map[string]string{}
	}
	n.tokens[user.ID] = token
	return nil
}

func (n *captureNotifier) Token(userID string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[userID]
}

// testEnv wires every service over temporary stores.
type testEnv struct {
	db        *sqlite.Store
	kv        *kv.Store
	index     *search.Index
	clock     *testClock
	publisher *recordingPublisher
	recorder  *countingRecorder
	notifier  *captureNotifier

	auth     *AuthService
	sessions *SessionService
	profile  *ProfileService
	habits   *HabitService
	goals    *GoalService
	checks   *CheckService
	notes    *NoteService
	progress *ProgressService
	search   *SearchService
}

// testNow is a Wednesday afternoon in UTC.
var testNow = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessionsKV, err := kv.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessionsKV.Close() })

	idx, err := search.Open(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		kv:        sessionsKV,
		index:     idx,
		clock:     &testClock{t: testNow},
		publisher: &recordingPublisher{},
		recorder:  newCountingRecorder(),
		notifier:  &captureNotifier{},
	}
	v := validation.New()
	calendar := NewCalendar(db, time.UTC, env.clock.Now)

	env.sessions = NewSessionService(sessionsKV, db, tokens, logger)
	env.auth = NewAuthService(db, sessionsKV, tokens, env.sessions, env.notifier, v,
		AuthConfig{DefaultTimezone: "UTC", ResetTTL: time.Hour}, logger)
	env.profile = NewProfileService(db, env.sessions, idx, env.publisher, v, logger)
	env.habits = NewHabitService(db, idx, env.publisher, env.recorder, v, env.clock.Now, logger)
	env.goals = NewGoalService(db, idx, v, env.clock.Now, logger)
	env.checks = NewCheckService(db, calendar, env.publisher, env.recorder, logger)
	env.notes = NewNoteService(db, calendar, idx, env.publisher, logger)
	env.progress = NewProgressService(db, db, db, calendar, env.recorder, logger)
	env.search = NewSearchService(idx, db, logger)
	return env
}

// signup creates an account and returns it with its tokens.
func (e *testEnv) signup(t *testing.T, email string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), SignupRequest{
		Email:    email,
		Password: "correct horse battery",
		Name:     "Test User",
		Timezone: "UTC",
	}, ClientInfo{IPAddress: "127.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return resp
}

// habitCreatedOn creates a habit as if on day.
func (e *testEnv) habitCreatedOn(t *testing.T, userID, title string, category domain.Category, day time.Time) *domain.Habit {
	t.Helper()
	prev := e.clock.Now()
	e.clock.Set(day)
	defer e.clock.Set(prev)

	h, err := e.habits.Create(context.Background(), userID, CreateHabitRequest{
		Title:    title,
		Category: string(category),
	})
	require.NoError(t, err)
	return h
}

func (e *testEnv) mark(t *testing.T, userID, habitID string, days ...string) {
	t.Helper()
	for _, d := range days {
		_, err := e.checks.Set(context.Background(), userID, habitID, d, true)
		require.NoError(t, err)
	}
}
