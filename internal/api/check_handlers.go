package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/domain"
)

func (s *Server) registerCheckRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setCheck",
		Method:      http.MethodPut,
		Path:        "/api/v1/habits/{id}/checks/{day}",
		Summary:     "Mark habit",
		Description: "Records whether the habit was done on a day. Days after today are rejected.",
		Tags:        []string{"Checks"},
		Security:    bearer,
	}, s.handleSetCheck)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCheck",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits/{id}/checks/{day}/toggle",
		Summary:     "Toggle habit mark",
		Description: "Marks the habit done on a day, or clears the mark if it was done",
		Tags:        []string{"Checks"},
		Security:    bearer,
	}, s.handleToggleCheck)

	huma.Register(s.api, huma.Operation{
		OperationID: "listChecks",
		Method:      http.MethodGet,
		Path:        "/api/v1/checks",
		Summary:     "List checks",
		Description: "Lists every check of every habit in an inclusive day range",
		Tags:        []string{"Checks"},
		Security:    bearer,
	}, s.handleListChecks)
}

// CheckResponse is a check in API responses.
type CheckResponse struct {
	HabitID   string    `json:"habit_id" doc:"Habit ID"`
	Day       string    `json:"day" doc:"Calendar day (YYYY-MM-DD)"`
	Completed bool      `json:"completed" doc:"Whether the habit was done"`
	CreatedAt time.Time `json:"created_at,omitzero" doc:"When the mark was recorded"`
}

// CheckOutput wraps a check for Huma.
type CheckOutput struct {
	Body CheckResponse
}

// SetCheckInput wraps the mark request for Huma.
type SetCheckInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	Day  string `path:"day" doc:"Calendar day (YYYY-MM-DD)"`
	Body struct {
		Completed bool `json:"completed" doc:"Whether the habit was done"`
	}
}

// ToggleCheckInput identifies the mark to flip.
type ToggleCheckInput struct {
	ID  string `path:"id" doc:"Habit ID"`
	Day string `path:"day" doc:"Calendar day (YYYY-MM-DD)"`
}

// DayRangeInput is an inclusive day range.
type DayRangeInput struct {
	From string `query:"from" required:"true" doc:"First day (YYYY-MM-DD)"`
	To   string `query:"to" required:"true" doc:"Last day (YYYY-MM-DD)"`
}

// ListChecksOutput wraps a check list for Huma.
type ListChecksOutput struct {
	Body struct {
		Checks []CheckResponse `json:"checks" doc:"Checks ordered by day"`
	}
}

func (s *Server) handleSetCheck(ctx context.Context, input *SetCheckInput) (*CheckOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	check, err := s.services.Checks.Set(ctx, userID, input.ID, input.Day, input.Body.Completed)
	if err != nil {
		return nil, err
	}
	return &CheckOutput{Body: mapCheck(check)}, nil
}

func (s *Server) handleToggleCheck(ctx context.Context, input *ToggleCheckInput) (*CheckOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.services.Checks.Toggle(ctx, userID, input.ID, input.Day)
	if err != nil {
		return nil, err
	}
	return &CheckOutput{Body: CheckResponse{
		HabitID:   res.HabitID,
		Day:       res.Day.String(),
		Completed: res.Completed,
	}}, nil
}

func (s *Server) handleListChecks(ctx context.Context, input *DayRangeInput) (*ListChecksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	checks, err := s.services.Checks.ListRange(ctx, userID, input.From, input.To)
	if err != nil {
		return nil, err
	}
	resp := &ListChecksOutput{}
	resp.Body.Checks = make([]CheckResponse, 0, len(checks))
	for _, c := range checks {
		resp.Body.Checks = append(resp.Body.Checks, mapCheck(c))
	}
	return resp, nil
}

func mapCheck(c *domain.Check) CheckResponse {
	return CheckResponse{
		HabitID:   c.HabitID,
		Day:       c.Day.String(),
		Completed: c.Completed,
		CreatedAt: c.CreatedAt,
	}
}
