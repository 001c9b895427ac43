package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/service"
)

func (s *Server) registerProgressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getToday",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress/today",
		Summary:     "Today",
		Description: "Active habits with their mark and streak, the day's summary, note and prompt",
		Tags:        []string{"Progress"},
		Security:    bearer,
	}, s.handleGetToday)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStreaks",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress/streak",
		Summary:     "Streaks",
		Description: "Current and longest streaks, overall and per active habit",
		Tags:        []string{"Progress"},
		Security:    bearer,
	}, s.handleGetStreaks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBalance",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress/balance",
		Summary:     "Life balance",
		Description: "Pooled consistency for each of the six categories",
		Tags:        []string{"Progress"},
		Security:    bearer,
	}, s.handleGetBalance)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMonth",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress/month",
		Summary:     "Month table",
		Description: "One row per day of the month with each active habit's mark and the day's note",
		Tags:        []string{"Progress"},
		Security:    bearer,
	}, s.handleGetMonth)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHeatmap",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress/heatmap",
		Summary:     "Activity heatmap",
		Description: "Completed checks per day in Monday-first weeks, over trailing days or a month",
		Tags:        []string{"Progress"},
		Security:    bearer,
	}, s.handleGetHeatmap)
}

// AsOfInput sets the reference day of a progress view.
type AsOfInput struct {
	AsOf string `query:"as_of" doc:"Reference day (YYYY-MM-DD), today by default"`
}

// TodayOutput wraps the today view for Huma.
type TodayOutput struct {
	Body TodayResponse
}

// TodayResponse is the daily dashboard.
type TodayResponse struct {
	Day       string       `json:"day" doc:"Calendar day"`
	Completed int          `json:"completed" doc:"Active habits done"`
	Total     int          `json:"total" doc:"Active habits"`
	Habits    []TodayHabit `json:"habits" doc:"Active habits"`
	Note      string       `json:"note,omitempty" doc:"The day's note"`
	Prompt    string       `json:"prompt" doc:"Reflection prompt"`
}

// TodayHabit is a habit row on the dashboard.
type TodayHabit struct {
	Habit         HabitResponse `json:"habit"`
	Completed     bool          `json:"completed"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
}

// StreakOutput wraps the streak view for Huma.
type StreakOutput struct {
	Body *service.StreakView
}

// BalanceOutput wraps the balance view for Huma.
type BalanceOutput struct {
	Body *service.BalanceView
}

// MonthInput selects the month table.
type MonthInput struct {
	Month string `query:"month" doc:"Month (YYYY-MM), the current one by default"`
	AsOf  string `query:"as_of" doc:"Reference day (YYYY-MM-DD), today by default"`
}

// MonthOutput wraps the month view for Huma.
type MonthOutput struct {
	Body *service.MonthView
}

// HeatmapInput selects the heatmap window.
type HeatmapInput struct {
	Days  int    `query:"days" minimum:"0" maximum:"730" doc:"Trailing days ending today, 365 by default"`
	Month string `query:"month" doc:"Month (YYYY-MM); cannot be combined with days"`
	AsOf  string `query:"as_of" doc:"Reference day (YYYY-MM-DD), today by default"`
}

// HeatmapOutput wraps the heatmap for Huma.
type HeatmapOutput struct {
	Body HeatmapResponse
}

// HeatmapResponse is the activity grid.
type HeatmapResponse struct {
	Start       string          `json:"start" doc:"First requested day"`
	End         string          `json:"end" doc:"Last requested day"`
	Today       string          `json:"today" doc:"Reference day; no cell is after it"`
	TotalChecks int             `json:"total_checks" doc:"Completed checks inside the range"`
	Weeks       [][]HeatmapCell `json:"weeks" doc:"Monday-first weeks; the last may be short"`
}

// HeatmapCell is one day of the grid.
type HeatmapCell struct {
	Day       string `json:"day"`
	Count     int    `json:"count" doc:"Completed checks"`
	Intensity int    `json:"intensity" doc:"Color bucket from 0 to 4"`
	InRange   bool   `json:"in_range" doc:"False for padding days outside the range"`
}

func (s *Server) handleGetToday(ctx context.Context, input *AsOfInput) (*TodayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Progress.Today(ctx, userID, input.AsOf)
	if err != nil {
		return nil, err
	}
	resp := TodayResponse{
		Day:       view.Summary.Day.String(),
		Completed: view.Summary.Completed,
		Total:     view.Summary.Total,
		Habits:    make([]TodayHabit, 0, len(view.Habits)),
		Note:      view.Note,
		Prompt:    view.Prompt,
	}
	for _, h := range view.Habits {
		resp.Habits = append(resp.Habits, TodayHabit{
			Habit:         mapHabit(h.Habit),
			Completed:     h.Completed,
			CurrentStreak: h.Streak.Current,
			LongestStreak: h.Streak.Longest,
		})
	}
	return &TodayOutput{Body: resp}, nil
}

func (s *Server) handleGetStreaks(ctx context.Context, input *AsOfInput) (*StreakOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Progress.Streak(ctx, userID, input.AsOf)
	if err != nil {
		return nil, err
	}
	return &StreakOutput{Body: view}, nil
}

func (s *Server) handleGetBalance(ctx context.Context, input *AsOfInput) (*BalanceOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Progress.Balance(ctx, userID, input.AsOf)
	if err != nil {
		return nil, err
	}
	return &BalanceOutput{Body: view}, nil
}

func (s *Server) handleGetMonth(ctx context.Context, input *MonthInput) (*MonthOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Progress.Month(ctx, userID, input.Month, input.AsOf)
	if err != nil {
		return nil, err
	}
	return &MonthOutput{Body: view}, nil
}

func (s *Server) handleGetHeatmap(ctx context.Context, input *HeatmapInput) (*HeatmapOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.services.Progress.Heatmap(ctx, userID, service.HeatmapQuery{
		Days:  input.Days,
		Month: input.Month,
		AsOf:  input.AsOf,
	})
	if err != nil {
		return nil, err
	}

	resp := HeatmapResponse{
		Start:       view.Start.String(),
		End:         view.End.String(),
		Today:       view.Today.String(),
		TotalChecks: view.TotalChecks,
		Weeks:       make([][]HeatmapCell, 0, len(view.Weeks)),
	}
	for _, w := range view.Weeks {
		resp.Weeks = append(resp.Weeks, mapWeek(w))
	}
	return &HeatmapOutput{Body: resp}, nil
}

func mapWeek(w progress.Week) []HeatmapCell {
	cells := make([]HeatmapCell, 0, len(w))
	for _, b := range w {
		cells = append(cells, HeatmapCell{
			Day:       b.Day.String(),
			Count:     b.Count,
			Intensity: progress.Intensity(b.Count),
			InRange:   b.InRange,
		})
	}
	return cells
}
