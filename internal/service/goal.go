package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/id"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/validation"
)

// GoalService manages goals.
type GoalService struct {
	goals     store.GoalStore
	indexer   SearchIndexer
	validator *validation.Validator
	now       Clock
	logger    *slog.Logger
}

// NewGoalService creates a goal service.
func NewGoalService(goals store.GoalStore, indexer SearchIndexer, v *validation.Validator, now Clock, logger *slog.Logger) *GoalService {
	if now == nil {
		now = time.Now
	}
	return &GoalService{goals: goals, indexer: indexer, validator: v, now: now, logger: logger}
}

// GoalRequest creates a goal.
type GoalRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// UpdateGoalRequest edits a goal.
type UpdateGoalRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (s *GoalService) Create(ctx context.Context, userID string, req GoalRequest) (*domain.Goal, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goalID, err := id.Generate(id.PrefixGoal)
	if err != nil {
		return nil, fmt.Errorf("generate goal ID: %w", err)
	}
	now := s.now()
	goal := &domain.Goal{
		ID:          goalID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.goals.CreateGoal(ctx, goal); err != nil {
		return nil, storeError(err, "goal")
	}
	index(s.indexer, s.logger, search.GoalDocument(goal))
	s.logger.Info("goal created", "user_id", userID, "goal_id", goal.ID)
	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID string) ([]*domain.Goal, error) {
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID string, req UpdateGoalRequest) (*domain.Goal, error) {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, s.validator.Var("title", t, "required")
		}
		req.Title = &t
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		req.Description = &d
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, storeError(err, "goal")
	}
	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	goal.UpdatedAt = s.now()
	if err := s.goals.UpdateGoal(ctx, goal); err != nil {
		return nil, storeError(err, "goal")
	}
	index(s.indexer, s.logger, search.GoalDocument(goal))
	return goal, nil
}

// Delete removes a goal. Its habits stay and lose the link.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.goals.DeleteGoal(ctx, userID, goalID); err != nil {
		return storeError(err, "goal")
	}
	unindex(s.indexer, s.logger, search.DocTypeGoal, goalID)
	s.logger.Info("goal deleted", "user_id", userID, "goal_id", goalID)
	return nil
}
