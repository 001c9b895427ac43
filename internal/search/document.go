// Package search is a per-user full-text index over habits, goals and
// daily notes, backed by Bleve.
package search

import (
	"github.com/habitoapp/habito-server/internal/domain"
)

// DocType discriminates documents in the shared index.
type DocType string

const (
	DocTypeHabit DocType = "habit"
	DocTypeGoal  DocType = "goal"
	DocTypeNote  DocType = "note"
)

// Document is one indexed entity. Text fields are folded before indexing
// so "meditação" and "meditacao" find each other.
type Document struct {
	Type     DocType
	EntityID string
	UserID   string
	Title    string
	Body     string
	Category string
	Day      string // notes only
	Created  int64  // unix millis
}

// DocID is the index key. Notes have no ID of their own; (user, day) is
// unique.
func (d *Document) DocID() string {
	return string(d.Type) + ":" + d.EntityID
}

// ToMap converts the document to the field names used by the mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"type":       string(d.Type),
		"entity_id":  d.EntityID,
		"user_id":    d.UserID,
		"title":      d.Title,
		"title_text": Fold(d.Title),
		"created_at": d.Created,
	}
	if d.Body != "" {
		m["body"] = d.Body
		m["body_text"] = Fold(d.Body)
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Day != "" {
		m["day"] = d.Day
	}
	return m
}

// HabitDocument builds the document for a habit.
func HabitDocument(h *domain.Habit) *Document {
	return &Document{
		Type:     DocTypeHabit,
		EntityID: h.ID,
		UserID:   h.UserID,
		Title:    h.Title,
		Body:     h.IdentityLabel,
		Category: string(h.Category),
		Created:  h.CreatedAt.UnixMilli(),
	}
}

// GoalDocument builds the document for a goal.
func GoalDocument(g *domain.Goal) *Document {
	return &Document{
		Type:     DocTypeGoal,
		EntityID: g.ID,
		UserID:   g.UserID,
		Title:    g.Title,
		Body:     g.Description,
		Created:  g.CreatedAt.UnixMilli(),
	}
}

// NoteDocument builds the document for a daily note.
func NoteDocument(n *domain.DailyNote) *Document {
	return &Document{
		Type:     DocTypeNote,
		EntityID: NoteEntityID(n.UserID, string(n.Day)),
		UserID:   n.UserID,
		Title:    string(n.Day),
		Body:     n.Content,
		Day:      string(n.Day),
		Created:  n.UpdatedAt.UnixMilli(),
	}
}

// NoteEntityID identifies a user's note for one day.
func NoteEntityID(userID, day string) string {
	return userID + "@" + day
}
