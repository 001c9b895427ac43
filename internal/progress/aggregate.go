package progress

import (
	"slices"
)

// CompletionEvent is one check row: a habit marked (or unmarked) on a day.
type CompletionEvent struct {
	HabitID   string
	Day       DayKey
	Completed bool
}

// Aggregation groups completion events by day and by habit.
type Aggregation struct {
	// Completed holds, per day, the habits whose last row was completed=true.
	Completed map[DayKey]map[string]struct{}
	// Table holds the last-seen flag for every (day, habit) pair, falses
	// included, for rendering check grids.
	Table map[DayKey]map[string]bool
}

// Aggregate folds events into an Aggregation. When the same (habit, day)
// appears more than once, the later row in the slice wins. A malformed day
// aborts the whole call.
func Aggregate(events []CompletionEvent) (*Aggregation, error) {
	agg := &Aggregation{
		Completed: make(map[DayKey]map[string]struct{}),
		Table:     make(map[DayKey]map[string]bool),
	}

	for _, e := range events {
		if err := e.Day.Validate(); err != nil {
			return nil, err
		}
		row, ok := agg.Table[e.Day]
		if !ok {
			row = make(map[string]bool)
			agg.Table[e.Day] = row
		}
		row[e.HabitID] = e.Completed
	}

	for day, row := range agg.Table {
		for habitID, done := range row {
			if !done {
				continue
			}
			set, ok := agg.Completed[day]
			if !ok {
				set = make(map[string]struct{})
				agg.Completed[day] = set
			}
			set[habitID] = struct{}{}
		}
	}

	return agg, nil
}

// Days returns the days with at least one completion, ascending.
func (a *Aggregation) Days() []DayKey {
	days := make([]DayKey, 0, len(a.Completed))
	for d := range a.Completed {
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}

// Counts returns the number of completed habits per day.
func (a *Aggregation) Counts() map[DayKey]int {
	counts := make(map[DayKey]int, len(a.Completed))
	for d, set := range a.Completed {
		counts[d] = len(set)
	}
	return counts
}

// HabitDays returns the days on which habitID was completed, ascending.
func (a *Aggregation) HabitDays(habitID string) []DayKey {
	var days []DayKey
	for d, set := range a.Completed {
		if _, ok := set[habitID]; ok {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	return days
}

// IsCompleted reports whether habitID was completed on day.
func (a *Aggregation) IsCompleted(day DayKey, habitID string) bool {
	_, ok := a.Completed[day][habitID]
	return ok
}

// DaysFor returns the days on which any of the given habits was completed,
// ascending. A nil filter means every habit.
func (a *Aggregation) DaysFor(habitIDs map[string]struct{}) []DayKey {
	if habitIDs == nil {
		return a.Days()
	}
	var days []DayKey
	for d, set := range a.Completed {
		for id := range set {
			if _, ok := habitIDs[id]; ok {
				days = append(days, d)
				break
			}
		}
	}
	slices.Sort(days)
	return days
}
