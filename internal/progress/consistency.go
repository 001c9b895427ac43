package progress

import (
	"math"
	"slices"
)

// Category is a life-balance area a habit belongs to.
type Category string

// The fixed category set, in display order.
const (
	CategoryPhysicalHealth Category = "physical_health"
	CategoryMentalHealth   Category = "mental_health"
	CategorySpirituality   Category = "spirituality"
	CategoryKnowledge      Category = "knowledge"
	CategoryWork           Category = "work"
	CategoryRelationships  Category = "relationships"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryPhysicalHealth,
	CategoryMentalHealth,
	CategorySpirituality,
	CategoryKnowledge,
	CategoryWork,
	CategoryRelationships,
}

// Known reports whether c is one of Categories.
func (c Category) Known() bool {
	return slices.Contains(Categories, c)
}

// HabitInfo is the slice of a habit the scorers need.
type HabitInfo struct {
	ID         string
	Category   Category
	CreatedDay DayKey
	Active     bool
}

// Score is a completion rate over the days a habit has existed.
type Score struct {
	Completed int `json:"completed"`
	Elapsed   int `json:"elapsed"`
	Percent   int `json:"percent"`
}

// CategoryScore is the pooled score of one category.
type CategoryScore struct {
	Category Category `json:"category"`
	Percent  int      `json:"percent"`
	Habits   int      `json:"habits"`
}

// Consistency scores completedDays against the days elapsed since created,
// both ends inclusive. A habit created after today has nothing elapsed and
// scores 0.
func Consistency(created, today DayKey, completedDays int) (Score, error) {
	diff, err := DaysBetween(created, today)
	if err != nil {
		return Score{}, err
	}
	elapsed := diff + 1
	if elapsed <= 0 {
		return Score{}, nil
	}
	completed := max(completedDays, 0)
	return Score{
		Completed: completed,
		Elapsed:   elapsed,
		Percent:   percent(completed, elapsed),
	}, nil
}

// HabitConsistency counts the habit's completed days inside [created, today]
// and scores them. Marks outside that window are ignored so the rate stays
// within 0..100.
func HabitConsistency(h HabitInfo, agg *Aggregation, today DayKey) (Score, error) {
	if err := h.CreatedDay.Validate(); err != nil {
		return Score{}, err
	}
	if err := today.Validate(); err != nil {
		return Score{}, err
	}
	completed := 0
	for _, d := range agg.HabitDays(h.ID) {
		if d >= h.CreatedDay && d <= today {
			completed++
		}
	}
	return Consistency(h.CreatedDay, today, completed)
}

// CategoryScores pools every active habit of a category: completed days are
// summed and divided by the summed elapsed days, so a 10/10 habit and a 0/10
// habit score 50 together. Categories without completions score 0 and
// habits in unknown categories are ignored. The result has one entry per
// known category, in Categories order.
func CategoryScores(habits []HabitInfo, agg *Aggregation, today DayKey) ([]CategoryScore, error) {
	type pool struct {
		completed, elapsed, habits int
	}
	pools := make(map[Category]*pool, len(Categories))
	for _, c := range Categories {
		pools[c] = &pool{}
	}

	for _, h := range habits {
		if !h.Active || !h.Category.Known() {
			continue
		}
		s, err := HabitConsistency(h, agg, today)
		if err != nil {
			return nil, err
		}
		p := pools[h.Category]
		p.completed += s.Completed
		p.elapsed += s.Elapsed
		p.habits++
	}

	scores := make([]CategoryScore, 0, len(Categories))
	for _, c := range Categories {
		p := pools[c]
		score := CategoryScore{Category: c, Habits: p.habits}
		if p.completed > 0 && p.elapsed > 0 {
			score.Percent = percent(p.completed, p.elapsed)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// percent rounds 100*num/den half away from zero, clamped to 0..100.
func percent(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(num) / float64(den)))
	return min(max(p, 0), 100)
}
