package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/id"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/telemetry"
	"github.com/habitoapp/habito-server/internal/validation"
)

// HabitService manages a user's habits.
type HabitService struct {
	habits    store.HabitStore
	indexer   SearchIndexer
	publisher events.Publisher
	recorder  telemetry.Recorder
	validator *validation.Validator
	now       Clock
	logger    *slog.Logger
}

// NewHabitService creates a habit service.
func NewHabitService(
	habits store.HabitStore,
	indexer SearchIndexer,
	publisher events.Publisher,
	recorder telemetry.Recorder,
	v *validation.Validator,
	now Clock,
	logger *slog.Logger,
) *HabitService {
	if now == nil {
		now = time.Now
	}
	return &HabitService{
		habits:    habits,
		indexer:   indexer,
		publisher: publisher,
		recorder:  recorder,
		validator: v,
		now:       now,
		logger:    logger,
	}
}

// CreateHabitRequest describes a new habit.
type CreateHabitRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=200"`
	IdentityLabel string `json:"identity_label,omitempty" validate:"max=200"`
	Category      string `json:"category,omitempty" validate:"omitempty,category"`
	Frequency     string `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly"`
	TimeHint      string `json:"time_hint,omitempty" validate:"max=50"`
	GoalID        string `json:"goal_id,omitempty"`
}

// UpdateHabitRequest edits a habit. Nil fields are left alone; an empty
// GoalID or Category clears it.
type UpdateHabitRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	IdentityLabel *string `json:"identity_label,omitempty" validate:"omitempty,max=200"`
	Category      *string `json:"category,omitempty" validate:"omitempty,category|eq="`
	Frequency     *string `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly"`
	TimeHint      *string `json:"time_hint,omitempty" validate:"omitempty,max=50"`
	GoalID        *string `json:"goal_id,omitempty"`
}

// Create adds a habit. It starts active and daily unless told otherwise.
func (s *HabitService) Create(ctx context.Context, userID string, req CreateHabitRequest) (*domain.Habit, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.IdentityLabel = strings.TrimSpace(req.IdentityLabel)
	req.TimeHint = strings.TrimSpace(req.TimeHint)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	habitID, err := id.Generate(id.PrefixHabit)
	if err != nil {
		return nil, fmt.Errorf("generate habit ID: %w", err)
	}
	frequency := domain.Frequency(req.Frequency)
	if frequency == "" {
		frequency = domain.FrequencyDaily
	}

	now := s.now()
	habit := &domain.Habit{
		ID:            habitID,
		UserID:        userID,
		GoalID:        req.GoalID,
		Title:         req.Title,
		IdentityLabel: req.IdentityLabel,
		Category:      domain.Category(req.Category),
		Frequency:     frequency,
		TimeHint:      req.TimeHint,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.habits.CreateHabit(ctx, habit); err != nil {
		return nil, storeError(err, "habit")
	}

	s.changed(ctx, events.HabitCreated, habit, "create")
	s.logger.Info("habit created", "user_id", userID, "habit_id", habit.ID)
	return habit, nil
}

// Get returns one habit.
func (s *HabitService) Get(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, storeError(err, "habit")
	}
	return habit, nil
}

// List returns the user's habits in creation order.
func (s *HabitService) List(ctx context.Context, userID string, activeOnly bool) ([]*domain.Habit, error) {
	habits, err := s.habits.ListHabits(ctx, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Update applies req to a habit.
func (s *HabitService) Update(ctx context.Context, userID, habitID string, req UpdateHabitRequest) (*domain.Habit, error) {
	for _, f := range []*string{req.Title, req.IdentityLabel, req.TimeHint} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if req.Title != nil && *req.Title == "" {
		return nil, s.validator.Var("title", "", "required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	habit, err := s.habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, storeError(err, "habit")
	}
	if req.Title != nil {
		habit.Title = *req.Title
	}
	if req.IdentityLabel != nil {
		habit.IdentityLabel = *req.IdentityLabel
	}
	if req.Category != nil {
		habit.Category = domain.Category(*req.Category)
	}
	if req.Frequency != nil {
		habit.Frequency = domain.Frequency(*req.Frequency)
	}
	if req.TimeHint != nil {
		habit.TimeHint = *req.TimeHint
	}
	if req.GoalID != nil {
		habit.GoalID = *req.GoalID
	}
	habit.UpdatedAt = s.now()

	if err := s.habits.UpdateHabit(ctx, habit); err != nil {
		return nil, storeError(err, "habit")
	}
	s.changed(ctx, events.HabitUpdated, habit, "update")
	return habit, nil
}

// ToggleActive pauses an active habit or resumes a paused one. Paused
// habits keep their history but drop out of today's list and the balance.
func (s *HabitService) ToggleActive(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.habits.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, storeError(err, "habit")
	}
	habit.Active = !habit.Active
	if err := s.habits.SetHabitActive(ctx, userID, habitID, habit.Active); err != nil {
		return nil, storeError(err, "habit")
	}
	habit.UpdatedAt = s.now()

	s.changed(ctx, events.HabitUpdated, habit, "toggle_active")
	s.logger.Info("habit active toggled", "user_id", userID, "habit_id", habitID, "active", habit.Active)
	return habit, nil
}

// Delete removes a habit and its checks.
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	if err := s.habits.DeleteHabit(ctx, userID, habitID); err != nil {
		return storeError(err, "habit")
	}
	unindex(s.indexer, s.logger, search.DocTypeHabit, habitID)
	publish(ctx, s.publisher, s.logger, events.New(events.HabitDeleted, userID, map[string]string{"habit_id": habitID}))
	s.recorder.HabitsChanged(ctx, "delete")
	s.logger.Info("habit deleted", "user_id", userID, "habit_id", habitID)
	return nil
}

func (s *HabitService) changed(ctx context.Context, t events.Type, habit *domain.Habit, op string) {
	index(s.indexer, s.logger, search.HabitDocument(habit))
	publish(ctx, s.publisher, s.logger, events.New(t, habit.UserID, habit))
	s.recorder.HabitsChanged(ctx, op)
}
