package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store"
)

// NoteService keeps the one-line daily reflections.
type NoteService struct {
	notes     store.NoteStore
	calendar  *Calendar
	indexer   SearchIndexer
	publisher events.Publisher
	logger    *slog.Logger
}

// NewNoteService creates a note service.
func NewNoteService(
	notes store.NoteStore,
	calendar *Calendar,
	indexer SearchIndexer,
	publisher events.Publisher,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		notes:     notes,
		calendar:  calendar,
		indexer:   indexer,
		publisher: publisher,
		logger:    logger,
	}
}

// Prompt is the reflection question for a day.
type Prompt struct {
	Day    progress.DayKey `json:"day"`
	Prompt string          `json:"prompt"`
}

// Get returns the note for day. A day without a note yields an empty one.
func (s *NoteService) Get(ctx context.Context, userID, day string) (*domain.DailyNote, error) {
	key, err := progress.ParseDayKey(day)
	if err != nil {
		return nil, domainerrors.InvalidDate(err)
	}
	note, err := s.notes.GetNote(ctx, userID, key)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.DailyNote{UserID: userID, Day: key}, nil
	}
	if err != nil {
		return nil, storeError(err, "note")
	}
	return note, nil
}

// Save writes the note for day. Content that is empty once trimmed removes
// the note, and the returned note then has no content.
func (s *NoteService) Save(ctx context.Context, userID, day, content string) (*domain.DailyNote, error) {
	key, err := progress.ParseDayKey(day)
	if err != nil {
		return nil, domainerrors.InvalidDate(err)
	}
	today, _, err := s.calendar.Today(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if key > today {
		return nil, domainerrors.Validationf("cannot write a note for %s: it is after today (%s)", key, today)
	}

	content = domain.NormalizeNote(content)
	if domain.NoteTooLong(content) {
		return nil, domainerrors.ValidationWithDetails("note is too long", map[string]any{
			"max_length": domain.MaxNoteLength,
		})
	}

	note := &domain.DailyNote{UserID: userID, Day: key, Content: content, UpdatedAt: s.calendar.Now()}
	entityID := search.NoteEntityID(userID, key.String())

	if content == "" {
		if err := s.notes.DeleteNote(ctx, userID, key); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, storeError(err, "note")
		}
		unindex(s.indexer, s.logger, search.DocTypeNote, entityID)
		s.logger.Debug("note cleared", "user_id", userID, "day", key)
		return note, nil
	}

	if err := s.notes.UpsertNote(ctx, note); err != nil {
		return nil, storeError(err, "note")
	}
	index(s.indexer, s.logger, search.NoteDocument(note))
	publish(ctx, s.publisher, s.logger, events.New(events.NoteSaved, userID, map[string]string{"day": key.String()}))
	return note, nil
}

// List returns the notes with from <= day <= to.
func (s *NoteService) List(ctx context.Context, userID, from, to string) ([]*domain.DailyNote, error) {
	r, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListNotes(ctx, userID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Prompt returns the reflection prompt for day, or for the user's today
// when day is empty.
func (s *NoteService) Prompt(ctx context.Context, userID, day string) (*Prompt, error) {
	key, _, err := s.calendar.Today(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	text, err := domain.DailyPrompt(key)
	if err != nil {
		return nil, dateError(err)
	}
	return &Prompt{Day: key, Prompt: text}, nil
}
