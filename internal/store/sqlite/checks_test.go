package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/store"
)

func seedCheck(t *testing.T, s *Store, userID, habitID string, day progress.DayKey, completed bool) {
	t.Helper()
	err := s.SetCheck(context.Background(), &domain.Check{
		HabitID:   habitID,
		UserID:    userID,
		Day:       day,
		Completed: completed,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("SetCheck %s/%s: %v", habitID, day, err)
	}
}

func TestSetCheck_Upserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	h := mustCreateHabit(t, s, u.ID, "habit-1", u.CreatedAt)

	seedCheck(t, s, u.ID, h.ID, "2024-01-05", true)
	seedCheck(t, s, u.ID, h.ID, "2024-01-05", false)

	got, err := s.GetCheck(ctx, u.ID, h.ID, "2024-01-05")
	if err != nil {
		t.Fatalf("GetCheck: %v", err)
	}
	if got.Completed {
		t.Errorf("last write should win")
	}

	all, err := s.ListAllChecks(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAllChecks: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected one row per (habit, day), got %d", len(all))
	}
}

func TestSetCheck_OtherUsersHabit(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateUser(t, s, "alice", "alice@example.com")
	bob := mustCreateUser(t, s, "bob", "bob@example.com")
	h := mustCreateHabit(t, s, alice.ID, "habit-1", alice.CreatedAt)

	err := s.SetCheck(context.Background(), &domain.Check{
		HabitID: h.ID, UserID: bob.ID, Day: "2024-01-05", Completed: true, CreatedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCheck_InvalidDay(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	h := mustCreateHabit(t, s, u.ID, "habit-1", u.CreatedAt)

	err := s.SetCheck(context.Background(), &domain.Check{
		HabitID: h.ID, UserID: u.ID, Day: "2024-02-30", Completed: true, CreatedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListChecks_Range(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	h1 := mustCreateHabit(t, s, u.ID, "habit-1", u.CreatedAt)
	h2 := mustCreateHabit(t, s, u.ID, "habit-2", u.CreatedAt.Add(time.Minute))

	seedCheck(t, s, u.ID, h1.ID, "2023-12-31", true)
	seedCheck(t, s, u.ID, h2.ID, "2024-01-01", true)
	seedCheck(t, s, u.ID, h1.ID, "2024-01-01", true)
	seedCheck(t, s, u.ID, h1.ID, "2024-01-31", false)
	seedCheck(t, s, u.ID, h1.ID, "2024-02-01", true)

	got, err := s.ListChecks(ctx, u.ID, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("ListChecks: %v", err)
	}
	want := []struct {
		habit string
		day   progress.DayKey
	}{
		{"habit-1", "2024-01-01"},
		{"habit-2", "2024-01-01"},
		{"habit-1", "2024-01-31"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d checks, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].HabitID != w.habit || got[i].Day != w.day {
			t.Errorf("check %d: got %s/%s, want %s/%s", i, got[i].HabitID, got[i].Day, w.habit, w.day)
		}
	}
}

func TestDeleteCheck(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	h := mustCreateHabit(t, s, u.ID, "habit-1", u.CreatedAt)
	seedCheck(t, s, u.ID, h.ID, "2024-01-05", true)

	if err := s.DeleteCheck(ctx, u.ID, h.ID, "2024-01-05"); err != nil {
		t.Fatalf("DeleteCheck: %v", err)
	}
	if _, err := s.GetCheck(ctx, u.ID, h.ID, "2024-01-05"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCheck(ctx, u.ID, h.ID, "2024-01-05"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteHabit_CascadesChecks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "user-1", "a@example.com")
	h := mustCreateHabit(t, s, u.ID, "habit-1", u.CreatedAt)
	seedCheck(t, s, u.ID, h.ID, "2024-01-05", true)

	if err := s.DeleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	all, err := s.ListAllChecks(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAllChecks: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("checks survived habit delete: %d", len(all))
	}
}
