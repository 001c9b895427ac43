package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habitoapp/habito-server/internal/store"
)

func TestHabitCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	h1 := mustCreateHabit(t, s, u.ID, "habit-1", base)
	mustCreateHabit(t, s, u.ID, "habit-2", base.Add(time.Hour))

	got, err := s.GetHabit(ctx, u.ID, h1.ID)
	if err != nil {
		t.Fatalf("GetHabit: %v", err)
	}
	if got.Title != h1.Title || !got.Active || got.GoalID != "" {
		t.Errorf("unexpected habit: %+v", got)
	}

	got.Title = "Ler 10 páginas"
	got.TimeHint = "manhã"
	got.UpdatedAt = base.Add(2 * time.Hour)
	if err := s.UpdateHabit(ctx, got); err != nil {
		t.Fatalf("UpdateHabit: %v", err)
	}
	if err := s.SetHabitActive(ctx, u.ID, "habit-2", false); err != nil {
		t.Fatalf("SetHabitActive: %v", err)
	}

	all, err := s.ListHabits(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("ListHabits: %v", err)
	}
	if len(all) != 2 || all[0].ID != "habit-1" || all[1].ID != "habit-2" {
		t.Fatalf("expected creation order, got %v", all)
	}
	if all[0].Title != "Ler 10 páginas" || all[0].TimeHint != "manhã" {
		t.Errorf("update not saved: %+v", all[0])
	}

	active, err := s.ListHabits(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("ListHabits active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "habit-1" {
		t.Errorf("expected only habit-1 active, got %v", active)
	}

	if err := s.DeleteHabit(ctx, u.ID, "habit-1"); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if _, err := s.GetHabit(ctx, u.ID, "habit-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHabits_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	h := mustCreateHabit(t, s, alice.ID, "habit-1", alice.CreatedAt)

	if _, err := s.GetHabit(ctx, bob.ID, h.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetHabit: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteHabit(ctx, bob.ID, h.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteHabit: expected ErrNotFound, got %v", err)
	}
	if err := s.SetHabitActive(ctx, bob.ID, h.ID, false); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SetHabitActive: expected ErrNotFound, got %v", err)
	}
	habits, err := s.ListHabits(ctx, bob.ID, false)
	if err != nil {
		t.Fatalf("ListHabits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("bob sees %d habits", len(habits))
	}
}

func TestCreateHabit_ForeignGoalRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	g := seedGoal(t, s, bob.ID, "goal-bob")

	h := mustCreateHabit(t, s, alice.ID, "habit-1", alice.CreatedAt)
	h.GoalID = g.ID
	if err := s.UpdateHabit(ctx, h); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
