package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/habitoapp/habito-server/internal/progress"
)

func TestHabit_CreatedDayUsesLocation(t *testing.T) {
	h := &Habit{
		ID:        "habit-1",
		Category:  progress.CategoryWork,
		Active:    true,
		CreatedAt: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC),
	}
	brt := time.FixedZone("BRT", -3*60*60)

	assert.Equal(t, progress.DayKey("2024-01-02"), h.CreatedDay(time.UTC))
	assert.Equal(t, progress.DayKey("2024-01-01"), h.CreatedDay(brt))

	info := h.Info(brt)
	assert.Equal(t, progress.HabitInfo{
		ID:         "habit-1",
		Category:   progress.CategoryWork,
		CreatedDay: "2024-01-01",
		Active:     true,
	}, info)
}

func TestFrequency_Valid(t *testing.T) {
	assert.True(t, FrequencyDaily.Valid())
	assert.True(t, FrequencyWeekly.Valid())
	assert.False(t, Frequency("hourly").Valid())
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Saúde física", CategoryLabel(progress.CategoryPhysicalHealth))
	assert.Equal(t, "hobbies", CategoryLabel(Category("hobbies")))
	for _, c := range progress.Categories {
		assert.NotEqual(t, string(c), CategoryLabel(c), "every known category has a label")
	}
}
