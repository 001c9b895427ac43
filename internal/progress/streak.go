package progress

import (
	"slices"
)

// StreakResult is the active and best run of consecutive completed days.
type StreakResult struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Streak walks the completed days in order. Longest is the maximal run of
// calendar-consecutive days. Current is the trailing run, and only survives
// while its last day is today or yesterday: a day without a mark yet does
// not break the streak until it ends.
//
// Days after today still count toward Longest but never toward Current.
func Streak(days []DayKey, today DayKey) (StreakResult, error) {
	if err := today.Validate(); err != nil {
		return StreakResult{}, err
	}
	if len(days) == 0 {
		return StreakResult{}, nil
	}

	sorted := slices.Clone(days)
	for _, d := range sorted {
		if err := d.Validate(); err != nil {
			return StreakResult{}, err
		}
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var (
		result  StreakResult
		run     int
		prev    DayKey
		tailRun int
		tailDay DayKey
	)
	for i, d := range sorted {
		if i == 0 {
			run = 1
		} else {
			gap, err := DaysBetween(prev, d)
			if err != nil {
				return StreakResult{}, err
			}
			if gap == 1 {
				run++
			} else {
				run = 1
			}
		}
		result.Longest = max(result.Longest, run)
		if d <= today {
			tailRun, tailDay = run, d
		}
		prev = d
	}

	if tailDay == "" {
		return result, nil
	}
	sinceLast, err := DaysBetween(tailDay, today)
	if err != nil {
		return StreakResult{}, err
	}
	if sinceLast <= 1 {
		result.Current = tailRun
	}
	return result, nil
}
