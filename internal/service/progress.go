package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitoapp/habito-server/internal/color"
	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/telemetry"
)

// Heatmap window bounds in days.
const (
	DefaultHeatmapDays = 365
	MaxHeatmapDays     = 730
)

// ProgressService computes the read-only progress views. Each call reads a
// fresh snapshot of the user's habits and checks; nothing is cached.
type ProgressService struct {
	habits   store.HabitStore
	checks   store.CheckStore
	notes    store.NoteStore
	calendar *Calendar
	recorder telemetry.Recorder
	logger   *slog.Logger
}

// NewProgressService creates a progress service.
func NewProgressService(
	habits store.HabitStore,
	checks store.CheckStore,
	notes store.NoteStore,
	calendar *Calendar,
	recorder telemetry.Recorder,
	logger *slog.Logger,
) *ProgressService {
	return &ProgressService{
		habits:   habits,
		checks:   checks,
		notes:    notes,
		calendar: calendar,
		recorder: recorder,
		logger:   logger,
	}
}

// snapshot is everything a view is computed from.
type snapshot struct {
	today  progress.DayKey
	loc    *time.Location
	habits []*domain.Habit
	agg    *progress.Aggregation
}

func (s *ProgressService) load(ctx context.Context, userID, asOf string) (*snapshot, error) {
	today, loc, err := s.calendar.Today(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	habits, err := s.habits.ListHabits(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	checks, err := s.checks.ListAllChecks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	agg, err := progress.Aggregate(domain.CompletionEvents(checks))
	if err != nil {
		return nil, dateError(err)
	}
	return &snapshot{today: today, loc: loc, habits: habits, agg: agg}, nil
}

func (s *ProgressService) observe(ctx context.Context, view string, start time.Time) {
	s.recorder.ProgressComputed(ctx, view, time.Since(start))
}

// HabitDay is one habit on the today view.
type HabitDay struct {
	Habit     *domain.Habit         `json:"habit"`
	Completed bool                  `json:"completed"`
	Streak    progress.StreakResult `json:"streak"`
}

// TodayView is the dashboard for a single day.
type TodayView struct {
	Summary progress.Summary `json:"summary"`
	Habits  []HabitDay       `json:"habits"`
	Note    string           `json:"note,omitempty"`
	Prompt  string           `json:"prompt"`
}

// Today lists the active habits with their mark and streak for the day.
func (s *ProgressService) Today(ctx context.Context, userID, asOf string) (*TodayView, error) {
	defer s.observe(ctx, "today", time.Now())

	snap, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	view := &TodayView{
		Summary: progress.TodaySummary(domain.HabitInfos(snap.habits, snap.loc), snap.agg, snap.today),
		Habits:  make([]HabitDay, 0, len(snap.habits)),
	}
	for _, h := range snap.habits {
		if !h.Active {
			continue
		}
		streak, err := progress.Streak(snap.agg.HabitDays(h.ID), snap.today)
		if err != nil {
			return nil, dateError(err)
		}
		view.Habits = append(view.Habits, HabitDay{
			Habit:     h,
			Completed: snap.agg.IsCompleted(snap.today, h.ID),
			Streak:    streak,
		})
	}

	note, err := s.notes.GetNote(ctx, userID, snap.today)
	switch {
	case err == nil:
		view.Note = note.Content
	case !errors.Is(err, store.ErrNotFound):
		return nil, storeError(err, "note")
	}
	if view.Prompt, err = domain.DailyPrompt(snap.today); err != nil {
		return nil, dateError(err)
	}
	return view, nil
}

// HabitStreak is one habit's streak.
type HabitStreak struct {
	HabitID string `json:"habit_id"`
	Title   string `json:"title"`
	progress.StreakResult
}

// StreakView holds the overall streak and each active habit's.
type StreakView struct {
	Day     progress.DayKey       `json:"day"`
	Overall progress.StreakResult `json:"overall"`
	Habits  []HabitStreak         `json:"habits"`
}

// Streak computes streaks as of today. The overall streak counts days with
// at least one completed habit.
func (s *ProgressService) Streak(ctx context.Context, userID, asOf string) (*StreakView, error) {
	defer s.observe(ctx, "streak", time.Now())

	snap, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	overall, err := progress.Streak(snap.agg.Days(), snap.today)
	if err != nil {
		return nil, dateError(err)
	}

	view := &StreakView{Day: snap.today, Overall: overall, Habits: []HabitStreak{}}
	for _, h := range snap.habits {
		if !h.Active {
			continue
		}
		r, err := progress.Streak(snap.agg.HabitDays(h.ID), snap.today)
		if err != nil {
			return nil, dateError(err)
		}
		view.Habits = append(view.Habits, HabitStreak{HabitID: h.ID, Title: h.Title, StreakResult: r})
	}
	return view, nil
}

// HabitStats are the numbers shown on a habit's page.
type HabitStats struct {
	Habit          *domain.Habit         `json:"habit"`
	Day            progress.DayKey       `json:"day"`
	CreatedDay     progress.DayKey       `json:"created_day"`
	Streak         progress.StreakResult `json:"streak"`
	Consistency    progress.Score        `json:"consistency"`
	TotalCompleted int                   `json:"total_completed"`
}

// HabitStats computes the streak and consistency of one habit.
func (s *ProgressService) HabitStats(ctx context.Context, userID, habitID, asOf string) (*HabitStats, error) {
	defer s.observe(ctx, "habit_stats", time.Now())

	snap, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	habit, ok := habitsByID(snap.habits)[habitID]
	if !ok {
		return nil, domainerrors.NotFound("habit not found")
	}

	days := snap.agg.HabitDays(habitID)
	streak, err := progress.Streak(days, snap.today)
	if err != nil {
		return nil, dateError(err)
	}
	score, err := progress.HabitConsistency(habit.Info(snap.loc), snap.agg, snap.today)
	if err != nil {
		return nil, dateError(err)
	}
	return &HabitStats{
		Habit:          habit,
		Day:            snap.today,
		CreatedDay:     habit.CreatedDay(snap.loc),
		Streak:         streak,
		Consistency:    score,
		TotalCompleted: len(days),
	}, nil
}

// MonthHabit is a column header of the month table.
type MonthHabit struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category domain.Category `json:"category,omitempty"`
}

// MonthView is the month table.
type MonthView struct {
	Month    string                       `json:"month"`
	Habits   []MonthHabit                 `json:"habits"`
	Rows     []progress.MonthRow          `json:"rows"`
	PerHabit []progress.HabitMonthPercent `json:"per_habit"`
}

// Month builds the table for month (YYYY-MM), or for today's month when
// month is empty. Columns are the active habits.
func (s *ProgressService) Month(ctx context.Context, userID, month, asOf string) (*MonthView, error) {
	defer s.observe(ctx, "month", time.Now())

	snap, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	m, err := s.resolveMonth(month, snap.today)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.ListNotes(ctx, userID, m.First(), m.Last())
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	byDay := make(map[progress.DayKey]string, len(notes))
	for _, n := range notes {
		byDay[n.Day] = n.Content
	}

	var (
		infos   []progress.HabitInfo
		columns = []MonthHabit{}
	)
	for _, h := range snap.habits {
		if !h.Active {
			continue
		}
		infos = append(infos, h.Info(snap.loc))
		columns = append(columns, MonthHabit{ID: h.ID, Title: h.Title, Category: h.Category})
	}

	rows, perHabit, err := progress.MonthTable(m, infos, snap.agg, byDay)
	if err != nil {
		return nil, dateError(err)
	}
	return &MonthView{Month: m.String(), Habits: columns, Rows: rows, PerHabit: perHabit}, nil
}

// HeatmapQuery selects the heatmap window: trailing Days, or a Month.
type HeatmapQuery struct {
	Days  int
	Month string
	AsOf  string
}

// HeatmapView is the activity grid.
type HeatmapView struct {
	Start       progress.DayKey `json:"start"`
	End         progress.DayKey `json:"end"`
	Today       progress.DayKey `json:"today"`
	TotalChecks int             `json:"total_checks"`
	Weeks       []progress.Week `json:"weeks"`
}

// Heatmap counts completed checks per day over the window, laid out in
// Monday-first weeks.
func (s *ProgressService) Heatmap(ctx context.Context, userID string, q HeatmapQuery) (*HeatmapView, error) {
	defer s.observe(ctx, "heatmap", time.Now())

	if q.Days != 0 && q.Month != "" {
		return nil, domainerrors.Validation("use either days or month, not both")
	}
	if q.Days < 0 || q.Days > MaxHeatmapDays {
		return nil, domainerrors.Validationf("days must be between 1 and %d", MaxHeatmapDays)
	}

	snap, err := s.load(ctx, userID, q.AsOf)
	if err != nil {
		return nil, err
	}

	var r progress.Range
	if q.Month != "" {
		m, err := s.resolveMonth(q.Month, snap.today)
		if err != nil {
			return nil, err
		}
		r = progress.MonthRange(m)
	} else {
		days := q.Days
		if days == 0 {
			days = DefaultHeatmapDays
		}
		if r, err = progress.TrailingDays(snap.today, days); err != nil {
			return nil, dateError(err)
		}
	}

	counts := snap.agg.Counts()
	weeks, err := progress.Heatmap(r, counts, snap.today)
	if err != nil {
		return nil, dateError(err)
	}

	view := &HeatmapView{Start: r.Start, End: r.End, Today: snap.today, Weeks: weeks}
	for _, w := range weeks {
		for _, b := range w {
			if b.InRange {
				view.TotalChecks += b.Count
			}
		}
	}
	return view, nil
}

// CategoryBalance is one spoke of the life-balance chart.
type CategoryBalance struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Color    string          `json:"color"`
	Percent  int             `json:"percent"`
	Habits   int             `json:"habits"`
}

// BalanceView scores every category.
type BalanceView struct {
	Day        progress.DayKey   `json:"day"`
	Categories []CategoryBalance `json:"categories"`
}

// Balance pools consistency per category over the active habits.
func (s *ProgressService) Balance(ctx context.Context, userID, asOf string) (*BalanceView, error) {
	defer s.observe(ctx, "balance", time.Now())

	snap, err := s.load(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	scores, err := progress.CategoryScores(domain.HabitInfos(snap.habits, snap.loc), snap.agg, snap.today)
	if err != nil {
		return nil, dateError(err)
	}

	view := &BalanceView{Day: snap.today, Categories: make([]CategoryBalance, 0, len(scores))}
	for _, sc := range scores {
		view.Categories = append(view.Categories, CategoryBalance{
			Category: sc.Category,
			Label:    domain.CategoryLabel(sc.Category),
			Color:    color.ForCategory(sc.Category),
			Percent:  sc.Percent,
			Habits:   sc.Habits,
		})
	}
	return view, nil
}

func (s *ProgressService) resolveMonth(month string, today progress.DayKey) (progress.Month, error) {
	if month == "" {
		m, err := progress.MonthOf(today)
		if err != nil {
			return progress.Month{}, dateError(err)
		}
		return m, nil
	}
	m, err := progress.ParseMonth(month)
	if err != nil {
		return progress.Month{}, domainerrors.InvalidDate(err)
	}
	return m, nil
}
