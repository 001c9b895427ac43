package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/habitoapp/habito-server/internal/progress"
)

// MaxNoteLength is the longest note content accepted, in characters.
const MaxNoteLength = 500

// DailyNote is a short reflection, one per user and day.
type DailyNote struct {
	UserID    string          `json:"user_id"`
	Day       progress.DayKey `json:"day"`
	Content   string          `json:"content"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeNote trims content and composes it to NFC so that the same text
// typed on different keyboards compares and counts the same.
func NormalizeNote(content string) string {
	return norm.NFC.String(strings.TrimSpace(content))
}

// NoteTooLong reports whether normalized content exceeds MaxNoteLength.
func NoteTooLong(content string) bool {
	return utf8.RuneCountInString(content) > MaxNoteLength
}

var dailyPrompts = []string{
	"Uma coisa que valeu a pena hoje:",
	"Algo pequeno que aprendi hoje:",
	"O que funcionou hoje?",
}

// DailyPrompt picks the reflection prompt shown for day. It rotates by day
// of month.
func DailyPrompt(day progress.DayKey) (string, error) {
	t, err := day.Time()
	if err != nil {
		return "", err
	}
	return dailyPrompts[t.Day()%len(dailyPrompts)], nil
}
