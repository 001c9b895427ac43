package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/service"
)

func (s *Server) registerHabitRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHabits",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits",
		Summary:     "List habits",
		Description: "Lists the user's habits, oldest first",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleListHabits)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createHabit",
		Method:        http.MethodPost,
		Path:          "/api/v1/habits",
		Summary:       "Create habit",
		Description:   "Creates a habit. It starts active and daily.",
		Tags:          []string{"Habits"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHabit",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Get habit",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleGetHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateHabit",
		Method:      http.MethodPatch,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Update habit",
		Description: "Edits a habit. Omitted fields are left alone; an empty category or goal_id clears it.",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleUpdateHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteHabit",
		Method:      http.MethodDelete,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Delete habit",
		Description: "Deletes a habit and all of its checks",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleDeleteHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleHabitActive",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits/{id}/toggle-active",
		Summary:     "Pause or resume habit",
		Description: "Flips the active flag. Paused habits keep their history but leave daily views and balance scores.",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleToggleHabitActive)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHabitStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}/stats",
		Summary:     "Habit stats",
		Description: "Returns the habit's streak and consistency",
		Tags:        []string{"Habits"},
		Security:    bearer,
	}, s.handleGetHabitStats)
}

// === DTOs ===

// HabitResponse is a habit in API responses.
type HabitResponse struct {
	ID            string    `json:"id" doc:"Habit ID"`
	Title         string    `json:"title" doc:"Title"`
	IdentityLabel string    `json:"identity_label,omitempty" doc:"Who the user becomes by keeping it"`
	Category      string    `json:"category,omitempty" doc:"Life-balance category key"`
	CategoryLabel string    `json:"category_label,omitempty" doc:"Category display label"`
	Frequency     string    `json:"frequency" doc:"daily or weekly"`
	TimeHint      string    `json:"time_hint,omitempty" doc:"When in the day it is done"`
	GoalID        string    `json:"goal_id,omitempty" doc:"Linked goal"`
	Active        bool      `json:"active" doc:"Whether the habit is tracked"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// HabitOutput wraps a habit for Huma.
type HabitOutput struct {
	Body HabitResponse
}

// ListHabitsInput filters the habit list.
type ListHabitsInput struct {
	ActiveOnly bool `query:"active" doc:"Only active habits"`
}

// ListHabitsOutput wraps the habit list for Huma.
type ListHabitsOutput struct {
	Body struct {
		Habits []HabitResponse `json:"habits" doc:"Habits"`
	}
}

// CreateHabitInput wraps the create request for Huma.
type CreateHabitInput struct {
	Body struct {
		Title         string `json:"title" minLength:"1" maxLength:"200" doc:"Title"`
		IdentityLabel string `json:"identity_label,omitempty" maxLength:"200" doc:"Identity statement"`
		Category      string `json:"category,omitempty" doc:"Category key"`
		Frequency     string `json:"frequency,omitempty" enum:"daily,weekly" doc:"Frequency, daily by default"`
		TimeHint      string `json:"time_hint,omitempty" maxLength:"50" doc:"Time of day hint"`
		GoalID        string `json:"goal_id,omitempty" doc:"Goal to link"`
	}
}

// HabitIDInput identifies a habit in the path.
type HabitIDInput struct {
	ID string `path:"id" doc:"Habit ID"`
}

// UpdateHabitInput wraps the update request for Huma.
type UpdateHabitInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	Body struct {
		Title         *string `json:"title,omitempty" maxLength:"200" doc:"Title"`
		IdentityLabel *string `json:"identity_label,omitempty" maxLength:"200" doc:"Identity statement"`
		Category      *string `json:"category,omitempty" doc:"Category key, empty to clear"`
		Frequency     *string `json:"frequency,omitempty" doc:"daily or weekly"`
		TimeHint      *string `json:"time_hint,omitempty" maxLength:"50" doc:"Time of day hint"`
		GoalID        *string `json:"goal_id,omitempty" doc:"Goal to link, empty to unlink"`
	}
}

// HabitStatsInput selects a habit and the reference day.
type HabitStatsInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	AsOf string `query:"as_of" doc:"Reference day (YYYY-MM-DD), today by default"`
}

// HabitStatsOutput wraps habit stats for Huma.
type HabitStatsOutput struct {
	Body HabitStatsResponse
}

// HabitStatsResponse is a habit with its numbers.
type HabitStatsResponse struct {
	Habit          HabitResponse `json:"habit"`
	Day            string        `json:"day" doc:"Reference day"`
	CreatedDay     string        `json:"created_day" doc:"Day the habit was created"`
	CurrentStreak  int           `json:"current_streak"`
	LongestStreak  int           `json:"longest_streak"`
	Consistency    int           `json:"consistency" doc:"Percent of days since creation that were completed"`
	DaysCompleted  int           `json:"days_completed" doc:"Completed days since creation"`
	DaysElapsed    int           `json:"days_elapsed" doc:"Days since creation, inclusive"`
	TotalCompleted int           `json:"total_completed" doc:"All completed days"`
}

// === Handlers ===

func (s *Server) handleListHabits(ctx context.Context, input *ListHabitsInput) (*ListHabitsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	habits, err := s.services.Habits.List(ctx, userID, input.ActiveOnly)
	if err != nil {
		return nil, err
	}
	resp := &ListHabitsOutput{}
	resp.Body.Habits = make([]HabitResponse, 0, len(habits))
	for _, h := range habits {
		resp.Body.Habits = append(resp.Body.Habits, mapHabit(h))
	}
	return resp, nil
}

func (s *Server) handleCreateHabit(ctx context.Context, input *CreateHabitInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	habit, err := s.services.Habits.Create(ctx, userID, service.CreateHabitRequest{
		Title:         input.Body.Title,
		IdentityLabel: input.Body.IdentityLabel,
		Category:      input.Body.Category,
		Frequency:     input.Body.Frequency,
		TimeHint:      input.Body.TimeHint,
		GoalID:        input.Body.GoalID,
	})
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabit(habit)}, nil
}

func (s *Server) handleGetHabit(ctx context.Context, input *HabitIDInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	habit, err := s.services.Habits.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabit(habit)}, nil
}

func (s *Server) handleUpdateHabit(ctx context.Context, input *UpdateHabitInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	habit, err := s.services.Habits.Update(ctx, userID, input.ID, service.UpdateHabitRequest{
		Title:         input.Body.Title,
		IdentityLabel: input.Body.IdentityLabel,
		Category:      input.Body.Category,
		Frequency:     input.Body.Frequency,
		TimeHint:      input.Body.TimeHint,
		GoalID:        input.Body.GoalID,
	})
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabit(habit)}, nil
}

func (s *Server) handleDeleteHabit(ctx context.Context, input *HabitIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Habits.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Habit deleted"), nil
}

func (s *Server) handleToggleHabitActive(ctx context.Context, input *HabitIDInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	habit, err := s.services.Habits.ToggleActive(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabit(habit)}, nil
}

func (s *Server) handleGetHabitStats(ctx context.Context, input *HabitStatsInput) (*HabitStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.services.Progress.HabitStats(ctx, userID, input.ID, input.AsOf)
	if err != nil {
		return nil, err
	}
	return &HabitStatsOutput{Body: HabitStatsResponse{
		Habit:          mapHabit(stats.Habit),
		Day:            stats.Day.String(),
		CreatedDay:     stats.CreatedDay.String(),
		CurrentStreak:  stats.Streak.Current,
		LongestStreak:  stats.Streak.Longest,
		Consistency:    stats.Consistency.Percent,
		DaysCompleted:  stats.Consistency.Completed,
		DaysElapsed:    stats.Consistency.Elapsed,
		TotalCompleted: stats.TotalCompleted,
	}}, nil
}

func mapHabit(h *domain.Habit) HabitResponse {
	r := HabitResponse{
		ID:            h.ID,
		Title:         h.Title,
		IdentityLabel: h.IdentityLabel,
		Category:      string(h.Category),
		Frequency:     string(h.Frequency),
		TimeHint:      h.TimeHint,
		GoalID:        h.GoalID,
		Active:        h.Active,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
	if h.Category != "" {
		r.CategoryLabel = domain.CategoryLabel(h.Category)
	}
	return r
}
