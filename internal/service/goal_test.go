package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/search"
)

func TestGoalService_Lifecycle(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User

	goal, err := env.goals.Create(ctx, user.ID, GoalRequest{Title: "Correr uma maratona", Description: "Em outubro"})
	require.NoError(t, err)

	habit, err := env.habits.Create(ctx, user.ID, CreateHabitRequest{Title: "Run", GoalID: goal.ID})
	require.NoError(t, err)
	assert.Equal(t, goal.ID, habit.GoalID)

	updated, err := env.goals.Update(ctx, user.ID, goal.ID, UpdateGoalRequest{Title: ptr("Correr meia maratona")})
	require.NoError(t, err)
	assert.Equal(t, "Correr meia maratona", updated.Title)
	assert.Equal(t, "Em outubro", updated.Description)

	goals, err := env.goals.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)

	res, err := env.index.Search(ctx, search.Params{UserID: user.ID, Query: "meia", Types: []search.DocType{search.DocTypeGoal}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	require.NoError(t, env.goals.Delete(ctx, user.ID, goal.ID))

	// The habit survives without its goal.
	kept, err := env.habits.Get(ctx, user.ID, habit.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.GoalID)

	res, err = env.index.Search(ctx, search.Params{UserID: user.ID, Types: []search.DocType{search.DocTypeGoal}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestGoalService_Validation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User

	_, err := env.goals.Create(ctx, user.ID, GoalRequest{Title: " "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.goals.Update(ctx, user.ID, "goal-missing", UpdateGoalRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, env.goals.Delete(ctx, user.ID, "goal-missing"), domainerrors.ErrNotFound)
}
