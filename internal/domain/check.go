package domain

import (
	"time"

	"github.com/habitoapp/habito-server/internal/progress"
)

// Check marks a habit on a day. There is at most one per (habit, day).
type Check struct {
	HabitID   string          `json:"habit_id"`
	UserID    string          `json:"user_id"`
	Day       progress.DayKey `json:"day"`
	Completed bool            `json:"completed"`
	CreatedAt time.Time       `json:"created_at"`
}

// CompletionEvents converts checks for the progress aggregator.
func CompletionEvents(checks []*Check) []progress.CompletionEvent {
	events := make([]progress.CompletionEvent, 0, len(checks))
	for _, c := range checks {
		events = append(events, progress.CompletionEvent{
			HabitID:   c.HabitID,
			Day:       c.Day,
			Completed: c.Completed,
		})
	}
	return events
}
