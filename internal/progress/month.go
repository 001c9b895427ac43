package progress

import "time"

// weekdayShort are the pt-BR short weekday names shown in the month table.
var weekdayShort = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// WeekdayShort returns the pt-BR short name of wd.
func WeekdayShort(wd time.Weekday) string {
	return weekdayShort[wd]
}

// MonthRow is one line of the month table.
type MonthRow struct {
	Day            DayKey          `json:"day"`
	Weekday        string          `json:"weekday"`
	Checks         map[string]bool `json:"checks"`
	CompletedCount int             `json:"completed_count"`
	TotalHabits    int             `json:"total_habits"`
	Percent        int             `json:"percent"`
	Note           string          `json:"note,omitempty"`
}

// HabitMonthPercent is one habit's completion rate across the month.
type HabitMonthPercent struct {
	HabitID   string `json:"habit_id"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
}

// MonthTable builds one row per day of m with a check cell for every habit
// given, plus each habit's share of the month's days that were completed.
// Callers pass the habits the table shows (the active ones) in display order.
func MonthTable(m Month, habits []HabitInfo, agg *Aggregation, notes map[DayKey]string) ([]MonthRow, []HabitMonthPercent, error) {
	days := m.Days()
	rows := make([]MonthRow, 0, days)
	completedBy := make(map[string]int, len(habits))

	day := m.First()
	for i := 0; i < days; i++ {
		wd, err := day.Weekday()
		if err != nil {
			return nil, nil, err
		}
		row := MonthRow{
			Day:         day,
			Weekday:     WeekdayShort(wd),
			Checks:      make(map[string]bool, len(habits)),
			TotalHabits: len(habits),
			Note:        notes[day],
		}
		for _, h := range habits {
			done := agg.IsCompleted(day, h.ID)
			row.Checks[h.ID] = done
			if done {
				row.CompletedCount++
				completedBy[h.ID]++
			}
		}
		row.Percent = percent(row.CompletedCount, row.TotalHabits)
		rows = append(rows, row)

		if day, err = AddDays(day, 1); err != nil {
			return nil, nil, err
		}
	}

	perHabit := make([]HabitMonthPercent, 0, len(habits))
	for _, h := range habits {
		perHabit = append(perHabit, HabitMonthPercent{
			HabitID:   h.ID,
			Completed: completedBy[h.ID],
			Percent:   percent(completedBy[h.ID], days),
		})
	}
	return rows, perHabit, nil
}

// Summary is the dashboard count of habits done today.
type Summary struct {
	Day       DayKey `json:"day"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// TodaySummary counts the active habits completed on today.
func TodaySummary(habits []HabitInfo, agg *Aggregation, today DayKey) Summary {
	s := Summary{Day: today}
	for _, h := range habits {
		if !h.Active {
			continue
		}
		s.Total++
		if agg.IsCompleted(today, h.ID) {
			s.Completed++
		}
	}
	return s
}
