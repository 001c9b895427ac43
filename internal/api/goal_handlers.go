package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/service"
)

func (s *Server) registerGoalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGoals",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals",
		Summary:     "List goals",
		Tags:        []string{"Goals"},
		Security:    bearer,
	}, s.handleListGoals)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGoal",
		Method:        http.MethodPost,
		Path:          "/api/v1/goals",
		Summary:       "Create goal",
		Tags:          []string{"Goals"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGoal",
		Method:      http.MethodPatch,
		Path:        "/api/v1/goals/{id}",
		Summary:     "Update goal",
		Tags:        []string{"Goals"},
		Security:    bearer,
	}, s.handleUpdateGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGoal",
		Method:      http.MethodDelete,
		Path:        "/api/v1/goals/{id}",
		Summary:     "Delete goal",
		Description: "Deletes a goal. Linked habits are kept and unlinked.",
		Tags:        []string{"Goals"},
		Security:    bearer,
	}, s.handleDeleteGoal)
}

// GoalResponse is a goal in API responses.
type GoalResponse struct {
	ID          string    `json:"id" doc:"Goal ID"`
	Title       string    `json:"title" doc:"Title"`
	Description string    `json:"description,omitempty" doc:"Description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// GoalOutput wraps a goal for Huma.
type GoalOutput struct {
	Body GoalResponse
}

// ListGoalsOutput wraps the goal list for Huma.
type ListGoalsOutput struct {
	Body struct {
		Goals []GoalResponse `json:"goals" doc:"Goals"`
	}
}

// CreateGoalInput wraps the create request for Huma.
type CreateGoalInput struct {
	Body struct {
		Title       string `json:"title" minLength:"1" maxLength:"200" doc:"Title"`
		Description string `json:"description,omitempty" maxLength:"1000" doc:"Description"`
	}
}

// UpdateGoalInput wraps the update request for Huma.
type UpdateGoalInput struct {
	ID   string `path:"id" doc:"Goal ID"`
	Body struct {
		Title       *string `json:"title,omitempty" maxLength:"200" doc:"Title"`
		Description *string `json:"description,omitempty" maxLength:"1000" doc:"Description"`
	}
}

// GoalIDInput identifies a goal in the path.
type GoalIDInput struct {
	ID string `path:"id" doc:"Goal ID"`
}

func (s *Server) handleListGoals(ctx context.Context, _ *struct{}) (*ListGoalsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := s.services.Goals.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &ListGoalsOutput{}
	resp.Body.Goals = make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		resp.Body.Goals = append(resp.Body.Goals, mapGoal(g))
	}
	return resp, nil
}

func (s *Server) handleCreateGoal(ctx context.Context, input *CreateGoalInput) (*GoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	goal, err := s.services.Goals.Create(ctx, userID, service.GoalRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: mapGoal(goal)}, nil
}

func (s *Server) handleUpdateGoal(ctx context.Context, input *UpdateGoalInput) (*GoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	goal, err := s.services.Goals.Update(ctx, userID, input.ID, service.UpdateGoalRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: mapGoal(goal)}, nil
}

func (s *Server) handleDeleteGoal(ctx context.Context, input *GoalIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Goals.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Goal deleted"), nil
}

func mapGoal(g *domain.Goal) GoalResponse {
	return GoalResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
