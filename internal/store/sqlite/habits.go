package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/store"
)

const habitColumns = `id, user_id, goal_id, title, identity_label, category, frequency,
	time_hint, active, created_at, updated_at`

func scanHabit(row scanner) (*domain.Habit, error) {
	var (
		h         domain.Habit
		goalID    sql.NullString
		category  string
		frequency string
		active    int
		createdAt string
		updatedAt string
	)
	err := row.Scan(&h.ID, &h.UserID, &goalID, &h.Title, &h.IdentityLabel, &category,
		&frequency, &h.TimeHint, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	h.GoalID = goalID.String
	h.Category = domain.Category(category)
	h.Frequency = domain.Frequency(frequency)
	h.Active = active != 0
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHabit inserts a habit. A GoalID must name one of the user's goals.
func (s *Store) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	if err := s.checkGoalOwner(ctx, habit.UserID, habit.GoalID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID,
		habit.UserID,
		nullString(habit.GoalID),
		habit.Title,
		habit.IdentityLabel,
		string(habit.Category),
		string(habit.Frequency),
		habit.TimeHint,
		boolToInt(habit.Active),
		formatTime(habit.CreatedAt),
		formatTime(habit.UpdatedAt),
	)
	switch {
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrInvalidInput.WithCause(err)
	}
	return err
}

// GetHabit returns one of the user's habits.
func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	h, err := scanHabit(row)
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

// ListHabits returns the user's habits in creation order.
func (s *Store) ListHabits(ctx context.Context, userID string, activeOnly bool) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// UpdateHabit saves every editable field of a habit.
func (s *Store) UpdateHabit(ctx context.Context, habit *domain.Habit) error {
	if err := s.checkGoalOwner(ctx, habit.UserID, habit.GoalID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE habits SET goal_id = ?, title = ?, identity_label = ?, category = ?,
			frequency = ?, time_hint = ?, active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		nullString(habit.GoalID),
		habit.Title,
		habit.IdentityLabel,
		string(habit.Category),
		string(habit.Frequency),
		habit.TimeHint,
		boolToInt(habit.Active),
		formatTime(habit.UpdatedAt),
		habit.ID,
		habit.UserID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SetHabitActive pauses or resumes a habit.
func (s *Store) SetHabitActive(ctx context.Context, userID, habitID string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET active = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		boolToInt(active), formatTime(time.Now()), habitID, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteHabit removes a habit and its checks.
func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// checkGoalOwner makes sure a linked goal belongs to the same user. The
// foreign key alone would accept another user's goal.
func (s *Store) checkGoalOwner(ctx context.Context, userID, goalID string) error {
	if goalID == "" {
		return nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM goals WHERE id = ? AND user_id = ?`, goalID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.ErrInvalidInput.WithMessage("goal not found")
		}
		return err
	}
	return nil
}
