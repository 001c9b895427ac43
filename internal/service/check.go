package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/telemetry"
)

// maxRangeDays bounds list queries over checks and notes.
const maxRangeDays = 731

// CheckService marks habits done on days.
type CheckService struct {
	checks    store.CheckStore
	calendar  *Calendar
	publisher events.Publisher
	recorder  telemetry.Recorder
	logger    *slog.Logger
}

// NewCheckService creates a check service.
func NewCheckService(
	checks store.CheckStore,
	calendar *Calendar,
	publisher events.Publisher,
	recorder telemetry.Recorder,
	logger *slog.Logger,
) *CheckService {
	return &CheckService{
		checks:    checks,
		calendar:  calendar,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// ToggleResult is the state of a check after a toggle.
type ToggleResult struct {
	HabitID   string          `json:"habit_id"`
	Day       progress.DayKey `json:"day"`
	Completed bool            `json:"completed"`
}

// Set records whether habitID was completed on day.
func (s *CheckService) Set(ctx context.Context, userID, habitID, day string, completed bool) (*domain.Check, error) {
	key, err := s.markableDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	check := &domain.Check{
		HabitID:   habitID,
		UserID:    userID,
		Day:       key,
		Completed: completed,
		CreatedAt: s.calendar.Now(),
	}
	if err := s.checks.SetCheck(ctx, check); err != nil {
		return nil, storeError(err, "habit")
	}
	s.changed(ctx, userID, habitID, key, completed)
	return check, nil
}

// Toggle marks an unmarked day and unmarks a marked one. Unmarking deletes
// the row rather than storing a false.
func (s *CheckService) Toggle(ctx context.Context, userID, habitID, day string) (*ToggleResult, error) {
	key, err := s.markableDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	existing, err := s.checks.GetCheck(ctx, userID, habitID, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeError(err, "check")
	}

	result := &ToggleResult{HabitID: habitID, Day: key}
	if existing != nil && existing.Completed {
		if err := s.checks.DeleteCheck(ctx, userID, habitID, key); err != nil {
			return nil, storeError(err, "check")
		}
	} else {
		err := s.checks.SetCheck(ctx, &domain.Check{
			HabitID:   habitID,
			UserID:    userID,
			Day:       key,
			Completed: true,
			CreatedAt: s.calendar.Now(),
		})
		if err != nil {
			return nil, storeError(err, "habit")
		}
		result.Completed = true
	}

	s.changed(ctx, userID, habitID, key, result.Completed)
	return result, nil
}

// ListRange returns the user's checks with from <= day <= to.
func (s *CheckService) ListRange(ctx context.Context, userID, from, to string) ([]*domain.Check, error) {
	r, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	checks, err := s.checks.ListChecks(ctx, userID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return checks, nil
}

// markableDay parses day and rejects days after the user's today.
func (s *CheckService) markableDay(ctx context.Context, userID, day string) (progress.DayKey, error) {
	key, err := progress.ParseDayKey(day)
	if err != nil {
		return "", domainerrors.InvalidDate(err)
	}
	today, _, err := s.calendar.Today(ctx, userID, "")
	if err != nil {
		return "", err
	}
	if key > today {
		return "", domainerrors.Validationf("cannot mark %s: it is after today (%s)", key, today)
	}
	return key, nil
}

func (s *CheckService) changed(ctx context.Context, userID, habitID string, day progress.DayKey, completed bool) {
	t := events.CheckCleared
	if completed {
		t = events.CheckSet
	}
	publish(ctx, s.publisher, s.logger, events.New(t, userID, ToggleResult{HabitID: habitID, Day: day, Completed: completed}))
	s.recorder.CheckToggled(ctx, completed)
	s.logger.Debug("check changed", "user_id", userID, "habit_id", habitID, "day", day, "completed", completed)
}

// parseRange validates an inclusive from..to span.
func parseRange(from, to string) (progress.Range, error) {
	start, err := progress.ParseDayKey(from)
	if err != nil {
		return progress.Range{}, domainerrors.InvalidDate(err)
	}
	end, err := progress.ParseDayKey(to)
	if err != nil {
		return progress.Range{}, domainerrors.InvalidDate(err)
	}
	span, err := progress.DaysBetween(start, end)
	if err != nil {
		return progress.Range{}, dateError(err)
	}
	if span < 0 {
		return progress.Range{}, domainerrors.Validation("from must not be after to")
	}
	if span >= maxRangeDays {
		return progress.Range{}, domainerrors.Validationf("range is limited to %d days", maxRangeDays)
	}
	return progress.Range{Start: start, End: end}, nil
}
