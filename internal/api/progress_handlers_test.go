package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitoapp/habito-server/internal/service"
)

// progressFixture creates "run" and "read" on 2024-03-01, marks run on
// 03-01..03-05 and read on 03-06, then sets the clock to 2024-03-06.
func progressFixture(t *testing.T) (*testServer, string, HabitResponse, HabitResponse) {
	t.Helper()
	ts := setupTestServer(t)
	user := ts.signup(t, "ana@example.com")
	token := bearerHeader(user.AccessToken)

	ts.clock.Set(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	run := ts.createHabit(t, user.AccessToken, "Run", "physical_health")
	read := ts.createHabit(t, user.AccessToken, "Read", "knowledge")
	ts.clock.Set(testNow)

	for _, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"} {
		w := ts.api.Put("/api/v1/habits/"+run.ID+"/checks/"+day, token, map[string]any{"completed": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := ts.api.Put("/api/v1/habits/"+read.ID+"/checks/2024-03-06", token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return ts, token, run, read
}

func TestProgress_Today(t *testing.T) {
	ts, token, run, read := progressFixture(t)

	w := ts.api.Get("/api/v1/progress/today", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[TodayResponse](t, w).Data

	assert.Equal(t, "2024-03-06", view.Day)
	assert.Equal(t, 1, view.Completed)
	assert.Equal(t, 2, view.Total)
	assert.NotEmpty(t, view.Prompt)

	byID := map[string]TodayHabit{}
	for _, h := range view.Habits {
		byID[h.Habit.ID] = h
	}
	assert.False(t, byID[run.ID].Completed)
	assert.Equal(t, 5, byID[run.ID].CurrentStreak, "yesterday keeps the streak alive")
	assert.True(t, byID[read.ID].Completed)
	assert.Equal(t, 1, byID[read.ID].CurrentStreak)
}

func TestProgress_Streak(t *testing.T) {
	ts, token, _, _ := progressFixture(t)

	w := ts.api.Get("/api/v1/progress/streak", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[service.StreakView](t, w).Data
	assert.Equal(t, 6, view.Overall.Current)
	assert.Equal(t, 6, view.Overall.Longest)
	assert.Len(t, view.Habits, 2)

	// Looking back from 03-04 ignores later marks.
	w = ts.api.Get("/api/v1/progress/streak?as_of=2024-03-04", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[service.StreakView](t, w).Data.Overall.Current)
}

func TestProgress_HabitStats(t *testing.T) {
	ts, token, run, _ := progressFixture(t)

	w := ts.api.Get("/api/v1/habits/"+run.ID+"/stats", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[HabitStatsResponse](t, w).Data
	assert.Equal(t, "2024-03-01", stats.CreatedDay)
	assert.Equal(t, 5, stats.CurrentStreak)
	assert.Equal(t, 83, stats.Consistency)
	assert.Equal(t, 5, stats.DaysCompleted)
	assert.Equal(t, 6, stats.DaysElapsed)
}

func TestProgress_Balance(t *testing.T) {
	ts, token, _, _ := progressFixture(t)

	w := ts.api.Get("/api/v1/progress/balance", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[service.BalanceView](t, w).Data

	require.Len(t, view.Categories, 6)
	percent := map[string]int{}
	for _, c := range view.Categories {
		percent[string(c.Category)] = c.Percent
	}
	assert.Equal(t, 83, percent["physical_health"])
	assert.Equal(t, 17, percent["knowledge"])
	assert.Zero(t, percent["work"])
}

func TestProgress_Month(t *testing.T) {
	ts, token, run, read := progressFixture(t)

	w := ts.api.Get("/api/v1/progress/month?month=2024-03", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[service.MonthView](t, w).Data

	assert.Equal(t, "2024-03", view.Month)
	require.Len(t, view.Rows, 31)
	assert.Equal(t, map[string]bool{run.ID: false, read.ID: true}, view.Rows[5].Checks)
	require.Len(t, view.Habits, 2)

	w = ts.api.Get("/api/v1/progress/month?month=2024-13", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgress_Heatmap(t *testing.T) {
	ts, token, _, _ := progressFixture(t)

	w := ts.api.Get("/api/v1/progress/heatmap?days=7", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[HeatmapResponse](t, w).Data

	assert.Equal(t, "2024-02-29", view.Start)
	assert.Equal(t, "2024-03-06", view.End)
	assert.Equal(t, 6, view.TotalChecks)
	require.Len(t, view.Weeks, 2)
	assert.Len(t, view.Weeks[0], 7)
	assert.Len(t, view.Weeks[1], 3)
	assert.Equal(t, "2024-02-26", view.Weeks[0][0].Day)
	assert.False(t, view.Weeks[0][0].InRange)
	assert.Equal(t, 1, view.Weeks[0][4].Intensity)

	w = ts.api.Get("/api/v1/progress/heatmap?days=7&month=2024-03", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.api.Get("/api/v1/progress/heatmap?days=1000", token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
