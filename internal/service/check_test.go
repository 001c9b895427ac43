package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/progress"
)

func TestCheckService_Toggle(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User
	habit := env.habitCreatedOn(t, user.ID, "Run", domain.CategoryPhysicalHealth, testNow)

	on, err := env.checks.Toggle(ctx, user.ID, habit.ID, "2024-03-06")
	require.NoError(t, err)
	assert.True(t, on.Completed)

	checks, err := env.checks.ListRange(ctx, user.ID, "2024-03-06", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, progress.DayKey("2024-03-06"), checks[0].Day)

	off, err := env.checks.Toggle(ctx, user.ID, habit.ID, "2024-03-06")
	require.NoError(t, err)
	assert.False(t, off.Completed)

	checks, err = env.checks.ListRange(ctx, user.ID, "2024-03-06", "2024-03-06")
	require.NoError(t, err)
	assert.Empty(t, checks, "unmarking deletes the row")

	assert.Equal(t, []events.Type{events.HabitCreated, events.CheckSet, events.CheckCleared}, env.publisher.Types())
	assert.Equal(t, map[bool]int{true: 1, false: 1}, env.recorder.checks)
}

func TestCheckService_SetKeepsOneRowPerDay(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User
	habit := env.habitCreatedOn(t, user.ID, "Run", domain.CategoryPhysicalHealth, testNow)

	_, err := env.checks.Set(ctx, user.ID, habit.ID, "2024-03-05", true)
	require.NoError(t, err)
	_, err = env.checks.Set(ctx, user.ID, habit.ID, "2024-03-05", false)
	require.NoError(t, err)

	checks, err := env.checks.ListRange(ctx, user.ID, "2024-03-01", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].Completed)

	// A stored false toggles back on.
	res, err := env.checks.Toggle(ctx, user.ID, habit.ID, "2024-03-05")
	require.NoError(t, err)
	assert.True(t, res.Completed)
}

func TestCheckService_RejectsBadDays(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User
	habit := env.habitCreatedOn(t, user.ID, "Run", domain.CategoryPhysicalHealth, testNow)

	_, err := env.checks.Toggle(ctx, user.ID, habit.ID, "2024-03-07")
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "tomorrow cannot be marked")

	_, err = env.checks.Toggle(ctx, user.ID, habit.ID, "2024-02-30")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDate)

	_, err = env.checks.Set(ctx, user.ID, habit.ID, "06/03/2024", true)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDate)
}

func TestCheckService_TodayFollowsUserTimezone(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User
	habit := env.habitCreatedOn(t, user.ID, "Run", domain.CategoryPhysicalHealth, testNow)

	// 15:00 UTC on the 6th is already the 7th in Auckland.
	_, err := env.profile.Update(ctx, user.ID, UpdateProfileRequest{Timezone: ptr("Pacific/Auckland")})
	require.NoError(t, err)

	_, err = env.checks.Toggle(ctx, user.ID, habit.ID, "2024-03-07")
	assert.NoError(t, err)
}

func TestCheckService_OtherUsersHabit(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	ana := env.signup(t, "ana@example.com").User
	bia := env.signup(t, "bia@example.com").User
	habit := env.habitCreatedOn(t, ana.ID, "Run", domain.CategoryPhysicalHealth, testNow)

	_, err := env.checks.Toggle(ctx, bia.ID, habit.ID, "2024-03-06")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.checks.Set(ctx, bia.ID, habit.ID, "2024-03-06", true)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCheckService_ListRangeValidation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	user := env.signup(t, "ana@example.com").User

	_, err := env.checks.ListRange(ctx, user.ID, "2024-03-06", "2024-03-01")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.checks.ListRange(ctx, user.ID, "2020-01-01", "2024-03-01")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.checks.ListRange(ctx, user.ID, "yesterday", "2024-03-01")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidDate)
}
