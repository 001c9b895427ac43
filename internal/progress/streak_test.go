package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// consecutive returns n days ending on last.
func consecutive(t *testing.T, last DayKey, n int) []DayKey {
	t.Helper()
	days := make([]DayKey, 0, n)
	for i := n - 1; i >= 0; i-- {
		d, err := AddDays(last, -i)
		require.NoError(t, err)
		days = append(days, d)
	}
	return days
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		days  []DayKey
		today DayKey
		want  StreakResult
	}{
		{
			name:  "empty history",
			days:  nil,
			today: "2024-03-04",
			want:  StreakResult{},
		},
		{
			name:  "single day today",
			days:  []DayKey{"2024-03-04"},
			today: "2024-03-04",
			want:  StreakResult{Current: 1, Longest: 1},
		},
		{
			name:  "gap resets the run",
			days:  []DayKey{"2024-03-01", "2024-03-02", "2024-03-04"},
			today: "2024-03-04",
			want:  StreakResult{Current: 1, Longest: 2},
		},
		{
			name:  "last day yesterday keeps the streak",
			days:  []DayKey{"2024-03-01", "2024-03-02", "2024-03-03"},
			today: "2024-03-04",
			want:  StreakResult{Current: 3, Longest: 3},
		},
		{
			name:  "two missed days break the streak",
			days:  []DayKey{"2024-03-01", "2024-03-02"},
			today: "2024-03-04",
			want:  StreakResult{Current: 0, Longest: 2},
		},
		{
			name:  "unsorted with duplicates",
			days:  []DayKey{"2024-03-04", "2024-03-02", "2024-03-03", "2024-03-03"},
			today: "2024-03-04",
			want:  StreakResult{Current: 3, Longest: 3},
		},
		{
			name:  "longest earlier than current",
			days:  []DayKey{"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04", "2024-03-03", "2024-03-04"},
			today: "2024-03-04",
			want:  StreakResult{Current: 2, Longest: 4},
		},
		{
			name:  "run across a leap day",
			days:  []DayKey{"2024-02-28", "2024-02-29", "2024-03-01"},
			today: "2024-03-01",
			want:  StreakResult{Current: 3, Longest: 3},
		},
		{
			name:  "run across a year boundary",
			days:  []DayKey{"2023-12-30", "2023-12-31", "2024-01-01"},
			today: "2024-01-02",
			want:  StreakResult{Current: 3, Longest: 3},
		},
		{
			name:  "future days count only toward longest",
			days:  []DayKey{"2024-03-03", "2024-03-04", "2024-03-06", "2024-03-07", "2024-03-08"},
			today: "2024-03-04",
			want:  StreakResult{Current: 2, Longest: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Streak(tt.days, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreak_ConsecutiveEndingToday(t *testing.T) {
	today := DayKey("2024-03-04")
	for _, n := range []int{1, 2, 7, 30, 400} {
		got, err := Streak(consecutive(t, today, n), today)
		require.NoError(t, err)
		assert.Equal(t, StreakResult{Current: n, Longest: n}, got, "n=%d", n)
	}
}

func TestStreak_ConsecutiveEndingTwoDaysAgo(t *testing.T) {
	today := DayKey("2024-03-04")
	last, err := AddDays(today, -2)
	require.NoError(t, err)

	for _, n := range []int{1, 2, 7, 30} {
		got, err := Streak(consecutive(t, last, n), today)
		require.NoError(t, err)
		assert.Equal(t, StreakResult{Current: 0, Longest: n}, got, "n=%d", n)
	}
}

func TestStreak_DoesNotMutateInput(t *testing.T) {
	days := []DayKey{"2024-03-04", "2024-03-01"}
	_, err := Streak(days, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, []DayKey{"2024-03-04", "2024-03-01"}, days)
}

func TestStreak_InvalidDay(t *testing.T) {
	_, err := Streak([]DayKey{"2024-03-01", "03/02/2024"}, "2024-03-04")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Streak([]DayKey{"2024-03-01"}, "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
