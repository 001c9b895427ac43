// Package store defines the persistence interfaces for the Habito server.
//
// Every read and write is scoped to a user. Asking for another user's row
// returns ErrNotFound, never the row.
package store

import (
	"context"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/progress"
)

// Store is the relational store: accounts and everything they own.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	UserStore
	HabitStore
	CheckStore
	GoalStore
	NoteStore
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUserProfile(ctx context.Context, user *domain.User) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	TouchUserLogin(ctx context.Context, userID string) error
	// DeleteUser removes the account and cascades to habits, checks, goals
	// and notes.
	DeleteUser(ctx context.Context, userID string) error
}

// HabitStore persists habits.
type HabitStore interface {
	CreateHabit(ctx context.Context, habit *domain.Habit) error
	GetHabit(ctx context.Context, userID, habitID string) (*domain.Habit, error)
	// ListHabits returns habits in creation order. activeOnly drops paused ones.
	ListHabits(ctx context.Context, userID string, activeOnly bool) ([]*domain.Habit, error)
	UpdateHabit(ctx context.Context, habit *domain.Habit) error
	SetHabitActive(ctx context.Context, userID, habitID string, active bool) error
	DeleteHabit(ctx context.Context, userID, habitID string) error
}

// CheckStore persists per-day habit marks.
type CheckStore interface {
	// SetCheck upserts the mark for (habit, day).
	SetCheck(ctx context.Context, check *domain.Check) error
	DeleteCheck(ctx context.Context, userID, habitID string, day progress.DayKey) error
	GetCheck(ctx context.Context, userID, habitID string, day progress.DayKey) (*domain.Check, error)
	// ListChecks returns marks with from <= day <= to, ordered by day.
	ListChecks(ctx context.Context, userID string, from, to progress.DayKey) ([]*domain.Check, error)
	ListAllChecks(ctx context.Context, userID string) ([]*domain.Check, error)
}

// GoalStore persists goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *domain.Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error)
	UpdateGoal(ctx context.Context, goal *domain.Goal) error
	// DeleteGoal removes the goal and unlinks its habits.
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

// NoteStore persists daily notes.
type NoteStore interface {
	UpsertNote(ctx context.Context, note *domain.DailyNote) error
	GetNote(ctx context.Context, userID string, day progress.DayKey) (*domain.DailyNote, error)
	DeleteNote(ctx context.Context, userID string, day progress.DayKey) error
	ListNotes(ctx context.Context, userID string, from, to progress.DayKey) ([]*domain.DailyNote, error)
}

// SessionStore keeps refresh sessions and password reset tokens. Entries
// expire on their own.
type SessionStore interface {
	Close() error
	SaveSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	SaveReset(ctx context.Context, reset *domain.PasswordReset) error
	// TakeReset returns the reset for tokenHash and removes it, so a token
	// works once.
	TakeReset(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
}
