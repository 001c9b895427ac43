package sqlite

import (
	"context"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/store"
)

const goalColumns = `id, user_id, title, description, created_at, updated_at`

func scanGoal(row scanner) (*domain.Goal, error) {
	var (
		g         domain.Goal
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal inserts a goal.
func (s *Store) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.Description,
		formatTime(goal.CreatedAt), formatTime(goal.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetGoal returns one of the user's goals.
func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	g, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// ListGoals returns the user's goals, oldest first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []*domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal saves title and description.
func (s *Store) UpdateGoal(ctx context.Context, goal *domain.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, description = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		goal.Title, goal.Description, formatTime(goal.UpdatedAt), goal.ID, goal.UserID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteGoal removes a goal. Linked habits keep existing with no goal.
func (s *Store) DeleteGoal(ctx context.Context, userID, goalID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	// ON DELETE SET NULL would leave updated_at stale.
	if _, err := tx.ExecContext(ctx,
		`UPDATE habits SET goal_id = NULL, updated_at = ? WHERE goal_id = ? AND user_id = ?`,
		formatTime(time.Now()), goalID, userID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}
