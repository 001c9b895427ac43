package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmap_TrailingWindow(t *testing.T) {
	// 2024-03-06 is a Wednesday; seven days back starts on Thursday 02-29.
	today := DayKey("2024-03-06")
	r, err := TrailingDays(today, 7)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "2024-02-29", End: "2024-03-06"}, r)

	counts := map[DayKey]int{"2024-02-26": 1, "2024-03-01": 3, "2024-03-06": 6}

	weeks, err := Heatmap(r, counts, today)
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	require.Len(t, weeks[0], 7)
	assert.Equal(t, DayKey("2024-02-26"), weeks[0][0].Day)
	assert.Equal(t, 1, weeks[0][0].Count)
	assert.False(t, weeks[0][0].InRange)
	assert.True(t, weeks[0][3].InRange)
	assert.Equal(t, 3, weeks[0][4].Count)

	// The current week stops at today.
	require.Len(t, weeks[1], 3)
	assert.Equal(t, DayKey("2024-03-04"), weeks[1][0].Day)
	assert.Equal(t, today, weeks[1][2].Day)
	assert.Equal(t, 6, weeks[1][2].Count)
}

func TestHeatmap_PastMonthIsFullWeeks(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)

	weeks, err := Heatmap(MonthRange(m), nil, "2024-04-15")
	require.NoError(t, err)

	// Feb 26 (Mon) through Mar 31 (Sun).
	require.Len(t, weeks, 5)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
	assert.Equal(t, DayKey("2024-02-26"), weeks[0][0].Day)
	assert.Equal(t, DayKey("2024-03-31"), weeks[4][6].Day)
}

func TestHeatmap_Invariants(t *testing.T) {
	today := DayKey("2024-03-06")
	counts := map[DayKey]int{"2024-03-05": 2, "2024-03-07": 9}

	for _, n := range []int{1, 6, 7, 8, 30, 365} {
		r, err := TrailingDays(today, n)
		require.NoError(t, err)

		weeks, err := Heatmap(r, counts, today)
		require.NoError(t, err)
		require.NotEmpty(t, weeks)

		var prev DayKey
		for i, w := range weeks {
			if i < len(weeks)-1 {
				assert.Len(t, w, 7, "only the last week may be short (n=%d)", n)
			}
			for j, b := range w {
				assert.LessOrEqual(t, b.Day, today, "no future buckets (n=%d)", n)
				assert.GreaterOrEqual(t, b.Count, 0)
				if prev != "" {
					gap, err := DaysBetween(prev, b.Day)
					require.NoError(t, err)
					assert.Equal(t, 1, gap, "chronological order")
				}
				wd, err := b.Day.Weekday()
				require.NoError(t, err)
				assert.Equal(t, j, isoWeekdayIndex(wd), "position matches weekday")
				prev = b.Day
			}
		}
		first := weeks[0][0].Day
		wd, err := first.Weekday()
		require.NoError(t, err)
		assert.Equal(t, time.Monday, wd)
	}
}

func TestHeatmap_FutureMonthIsEmpty(t *testing.T) {
	m, err := ParseMonth("2024-05")
	require.NoError(t, err)

	// Monday Apr 29 opens May's grid; with today on Apr 15 nothing is left.
	weeks, err := Heatmap(MonthRange(m), nil, "2024-04-15")
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestHeatmap_InvertedRange(t *testing.T) {
	weeks, err := Heatmap(Range{Start: "2024-03-10", End: "2024-03-01"}, nil, "2024-03-20")
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestHeatmap_InvalidDate(t *testing.T) {
	_, err := Heatmap(Range{Start: "2024-03-01", End: "2024-03-99"}, nil, "2024-03-20")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 0, Intensity(-3))
	assert.Equal(t, 0, Intensity(0))
	assert.Equal(t, 3, Intensity(3))
	assert.Equal(t, 4, Intensity(4))
	assert.Equal(t, 4, Intensity(12))
}
