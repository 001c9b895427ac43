// Package service holds the application logic between the HTTP handlers
// and the stores: validation, ownership, day arithmetic in the user's
// timezone, search index upkeep and event publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// SearchIndexer is the part of the search index services write to.
type SearchIndexer interface {
	Put(doc *search.Document) error
	Remove(docType search.DocType, entityID string) error
	RemoveUser(userID string) (int, error)
}

// Calendar resolves a user's timezone and today's DayKey.
type Calendar struct {
	users    store.UserStore
	fallback *time.Location
	now      Clock
}

// NewCalendar uses fallback for users without a valid timezone.
func NewCalendar(users store.UserStore, fallback *time.Location, now Clock) *Calendar {
	if fallback == nil {
		fallback = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{users: users, fallback: fallback, now: now}
}

// Location returns the user's timezone.
func (c *Calendar) Location(ctx context.Context, userID string) (*time.Location, error) {
	user, err := c.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user.Location(c.fallback), nil
}

// Today returns the user's current day and timezone. A non-empty asOf
// replaces the clock.
func (c *Calendar) Today(ctx context.Context, userID string, asOf string) (progress.DayKey, *time.Location, error) {
	loc, err := c.Location(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if asOf != "" {
		day, err := progress.ParseDayKey(asOf)
		if err != nil {
			return "", nil, domainerrors.InvalidDate(err)
		}
		return day, loc, nil
	}
	return progress.DayKeyOf(c.now(), loc), loc, nil
}

// Now returns the clock's time.
func (c *Calendar) Now() time.Time {
	return c.now()
}

// storeError translates store sentinels into domain errors. what names the
// entity in the message.
func storeError(err error, what string) error {
	var se *store.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w", what, err)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(what + " not found").WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(se.Message).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(se.Message).WithCause(err)
	case errors.Is(err, store.ErrForbidden):
		return domainerrors.Forbidden(se.Message).WithCause(err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// dateError reports a malformed DayKey as INVALID_DATE.
func dateError(err error) error {
	if errors.Is(err, progress.ErrInvalidDate) {
		return domainerrors.InvalidDate(err)
	}
	return err
}

// publish sends an event and logs failures. Events never fail a request.
func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("failed to publish event", "type", e.Type, "user_id", e.UserID, "error", err)
	}
}

// index writes doc and logs failures. The database stays the source of
// truth; `habitoctl reindex` repairs drift.
func index(indexer SearchIndexer, logger *slog.Logger, doc *search.Document) {
	if err := indexer.Put(doc); err != nil {
		logger.Warn("failed to index document", "type", doc.Type, "id", doc.EntityID, "error", err)
	}
}

func unindex(indexer SearchIndexer, logger *slog.Logger, t search.DocType, entityID string) {
	if err := indexer.Remove(t, entityID); err != nil {
		logger.Warn("failed to remove document", "type", t, "id", entityID, "error", err)
	}
}

// habitsByID indexes habits for lookups.
func habitsByID(habits []*domain.Habit) map[string]*domain.Habit {
	m := make(map[string]*domain.Habit, len(habits))
	for _, h := range habits {
		m[h.ID] = h
	}
	return m
}
