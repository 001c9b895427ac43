// Package events publishes domain events (habit changes, checks, notes)
// for downstream consumers such as reminder or analytics workers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	HabitCreated Type = "habit.created"
	HabitUpdated Type = "habit.updated"
	HabitDeleted Type = "habit.deleted"
	CheckSet     Type = "check.set"
	CheckCleared Type = "check.cleared"
	NoteSaved    Type = "note.saved"
	UserDeleted  Type = "user.deleted"
)

// Event is the envelope written to the bus.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh ID and the current time.
func New(t Type, userID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher sends events. Publish must not block request handling for long;
// implementations may buffer.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

// NewNoop returns a publisher that discards events.
func NewNoop() Publisher { return Noop{} }

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
