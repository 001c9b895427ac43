package sqlite

import (
	"context"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/store"
)

func scanNote(row scanner) (*domain.DailyNote, error) {
	var (
		n         domain.DailyNote
		day       string
		updatedAt string
	)
	if err := row.Scan(&n.UserID, &day, &n.Content, &updatedAt); err != nil {
		return nil, err
	}
	n.Day = progress.DayKey(day)
	var err error
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpsertNote writes the note for (user, day), replacing any earlier one.
func (s *Store) UpsertNote(ctx context.Context, note *domain.DailyNote) error {
	if err := note.Day.Validate(); err != nil {
		return store.ErrInvalidInput.WithCause(err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_notes (user_id, day, content, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		note.UserID, string(note.Day), note.Content, formatTime(note.UpdatedAt))
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return err
}

// GetNote returns the note for (user, day).
func (s *Store) GetNote(ctx context.Context, userID string, day progress.DayKey) (*domain.DailyNote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, day, content, updated_at FROM daily_notes WHERE user_id = ? AND day = ?`,
		userID, string(day))
	n, err := scanNote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

// DeleteNote removes the note for (user, day).
func (s *Store) DeleteNote(ctx context.Context, userID string, day progress.DayKey) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM daily_notes WHERE user_id = ? AND day = ?`, userID, string(day))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListNotes returns the user's notes with from <= day <= to.
func (s *Store) ListNotes(ctx context.Context, userID string, from, to progress.DayKey) ([]*domain.DailyNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, day, content, updated_at FROM daily_notes
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC`,
		userID, string(from), string(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*domain.DailyNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
