package sqlite

import (
	"context"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/store"
)

const checkColumns = `habit_id, user_id, day, completed, created_at`

func scanCheck(row scanner) (*domain.Check, error) {
	var (
		c         domain.Check
		day       string
		completed int
		createdAt string
	)
	if err := row.Scan(&c.HabitID, &c.UserID, &day, &completed, &createdAt); err != nil {
		return nil, err
	}
	c.Day = progress.DayKey(day)
	c.Completed = completed != 0

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCheck upserts the mark for (habit, day). The habit must belong to
// check.UserID.
func (s *Store) SetCheck(ctx context.Context, check *domain.Check) error {
	if err := check.Day.Validate(); err != nil {
		return store.ErrInvalidInput.WithCause(err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_checks (`+checkColumns+`)
		SELECT id, user_id, ?, ?, ? FROM habits WHERE id = ? AND user_id = ?
		ON CONFLICT(habit_id, day) DO UPDATE SET completed = excluded.completed`,
		string(check.Day),
		boolToInt(check.Completed),
		formatTime(check.CreatedAt),
		check.HabitID,
		check.UserID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteCheck removes the mark for (habit, day).
func (s *Store) DeleteCheck(ctx context.Context, userID, habitID string, day progress.DayKey) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM habit_checks WHERE habit_id = ? AND user_id = ? AND day = ?`,
		habitID, userID, string(day))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// GetCheck returns the mark for (habit, day).
func (s *Store) GetCheck(ctx context.Context, userID, habitID string, day progress.DayKey) (*domain.Check, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkColumns+` FROM habit_checks WHERE habit_id = ? AND user_id = ? AND day = ?`,
		habitID, userID, string(day))
	c, err := scanCheck(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListChecks returns the user's marks with from <= day <= to. DayKeys sort
// lexically in date order, so the range is a plain string comparison.
func (s *Store) ListChecks(ctx context.Context, userID string, from, to progress.DayKey) ([]*domain.Check, error) {
	return s.queryChecks(ctx,
		`SELECT `+checkColumns+` FROM habit_checks
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC, habit_id ASC`,
		userID, string(from), string(to))
}

// ListAllChecks returns every mark the user has.
func (s *Store) ListAllChecks(ctx context.Context, userID string) ([]*domain.Check, error) {
	return s.queryChecks(ctx,
		`SELECT `+checkColumns+` FROM habit_checks WHERE user_id = ? ORDER BY day ASC, habit_id ASC`,
		userID)
}

func (s *Store) queryChecks(ctx context.Context, query string, args ...any) ([]*domain.Check, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := []*domain.Check{}
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
