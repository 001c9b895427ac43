package progress

// MaxIntensity is the top of the display scale a count is binned into.
const MaxIntensity = 4

// Range is an inclusive span of days.
type Range struct {
	Start DayKey
	End   DayKey
}

// TrailingDays is the n days ending on today, today included.
func TrailingDays(today DayKey, n int) (Range, error) {
	if n < 1 {
		n = 1
	}
	start, err := AddDays(today, -(n - 1))
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: today}, nil
}

// MonthRange covers every day of m.
func MonthRange(m Month) Range {
	return Range{Start: m.First(), End: m.Last()}
}

// Bucket is one cell of the heatmap grid.
type Bucket struct {
	Day     DayKey `json:"day"`
	Count   int    `json:"count"`
	InRange bool   `json:"in_range"`
}

// Week is seven consecutive buckets, Monday first. The most recent week may
// be shorter because days after today are never emitted.
type Week []Bucket

// Heatmap lays counts out on a Monday-first week grid. The grid opens on the
// Monday on or before r.Start and closes on the Sunday on or after r.End.
// Leading and trailing padding days carry their counts but are flagged as
// outside the range. Buckets after today are dropped, so only the last week
// can be short. Weeks are returned oldest first.
func Heatmap(r Range, counts map[DayKey]int, today DayKey) ([]Week, error) {
	if err := r.Start.Validate(); err != nil {
		return nil, err
	}
	if err := r.End.Validate(); err != nil {
		return nil, err
	}
	if err := today.Validate(); err != nil {
		return nil, err
	}
	if r.End < r.Start {
		return []Week{}, nil
	}

	first, err := MondayOnOrBefore(r.Start)
	if err != nil {
		return nil, err
	}
	last, err := SundayOnOrAfter(r.End)
	if err != nil {
		return nil, err
	}
	if today < last {
		last = today
	}

	total, err := DaysBetween(first, last)
	if err != nil {
		return nil, err
	}
	if total < 0 {
		return []Week{}, nil
	}

	weeks := make([]Week, 0, total/7+1)
	var week Week
	day := first
	for i := 0; i <= total; i++ {
		week = append(week, Bucket{
			Day:     day,
			Count:   max(counts[day], 0),
			InRange: day >= r.Start && day <= r.End,
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
		if day, err = AddDays(day, 1); err != nil {
			return nil, err
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// Intensity bins a count onto the 0..MaxIntensity display scale.
func Intensity(count int) int {
	return min(max(count, 0), MaxIntensity)
}
