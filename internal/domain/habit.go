package domain

import (
	"time"

	"github.com/habitoapp/habito-server/internal/progress"
)

// Category is the life-balance area a habit feeds.
type Category = progress.Category

const (
	CategoryPhysicalHealth = progress.CategoryPhysicalHealth
	CategoryMentalHealth   = progress.CategoryMentalHealth
	CategorySpirituality   = progress.CategorySpirituality
	CategoryKnowledge      = progress.CategoryKnowledge
	CategoryWork           = progress.CategoryWork
	CategoryRelationships  = progress.CategoryRelationships
)

var categoryLabels = map[Category]string{
	progress.CategoryPhysicalHealth: "Saúde física",
	progress.CategoryMentalHealth:   "Saúde mental",
	progress.CategorySpirituality:   "Espiritualidade",
	progress.CategoryKnowledge:      "Conhecimento",
	progress.CategoryWork:           "Trabalho",
	progress.CategoryRelationships:  "Relacionamentos",
}

// CategoryLabel returns the display label, or the raw key when unknown.
func CategoryLabel(c Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Frequency is how often a habit is meant to be done.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Habit is something a user wants to do regularly.
type Habit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	GoalID        string    `json:"goal_id,omitempty"`
	Title         string    `json:"title"`
	IdentityLabel string    `json:"identity_label,omitempty"` // "I am someone who..."
	Category      Category  `json:"category,omitempty"`
	Frequency     Frequency `json:"frequency"`
	TimeHint      string    `json:"time_hint,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreatedDay is the calendar day the habit was created in loc.
func (h *Habit) CreatedDay(loc *time.Location) progress.DayKey {
	return progress.DayKeyOf(h.CreatedAt, loc)
}

// Info projects the habit for the progress calculators.
func (h *Habit) Info(loc *time.Location) progress.HabitInfo {
	return progress.HabitInfo{
		ID:         h.ID,
		Category:   h.Category,
		CreatedDay: h.CreatedDay(loc),
		Active:     h.Active,
	}
}

// HabitInfos projects a list of habits.
func HabitInfos(habits []*Habit, loc *time.Location) []progress.HabitInfo {
	infos := make([]progress.HabitInfo, 0, len(habits))
	for _, h := range habits {
		infos = append(infos, h.Info(loc))
	}
	return infos
}
