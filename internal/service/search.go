package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/progress"
	"github.com/habitoapp/habito-server/internal/search"
	"github.com/habitoapp/habito-server/internal/store"
)

// SearchBackend is the full-text index behind SearchService.
type SearchBackend interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
	PutAll(docs []*search.Document) error
	Rebuild() error
	Count() (uint64, error)
}

// SearchService finds a user's habits, goals and notes.
type SearchService struct {
	index  SearchBackend
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index SearchBackend, st store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: st, logger: logger}
}

// SearchRequest is a search from the API.
type SearchRequest struct {
	Query    string
	Types    []string
	Category string
	Limit    int
	Offset   int
}

// ReindexStats summarizes a rebuild.
type ReindexStats struct {
	Users     int           `json:"users"`
	Documents int           `json:"documents"`
	Took      time.Duration `json:"took"`
}

// Search runs req against the user's documents.
func (s *SearchService) Search(ctx context.Context, userID string, req SearchRequest) (*search.Result, error) {
	params := search.Params{
		UserID:   userID,
		Query:    strings.TrimSpace(req.Query),
		Category: req.Category,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	for _, t := range req.Types {
		switch dt := search.DocType(strings.TrimSpace(t)); dt {
		case search.DocTypeHabit, search.DocTypeGoal, search.DocTypeNote:
			params.Types = append(params.Types, dt)
		case "":
		default:
			return nil, domainerrors.Validationf("unknown type %q", t)
		}
	}
	if params.Category != "" && !progress.Category(params.Category).Known() {
		return nil, domainerrors.Validationf("unknown category %q", params.Category)
	}

	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// Reindex drops the index and rebuilds it from the database.
func (s *SearchService) Reindex(ctx context.Context) (*ReindexStats, error) {
	start := time.Now()
	if err := s.index.Rebuild(); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	stats := &ReindexStats{Users: len(users)}
	for _, u := range users {
		docs, err := s.userDocuments(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := s.index.PutAll(docs); err != nil {
			return nil, fmt.Errorf("index user %s: %w", u.ID, err)
		}
		stats.Documents += len(docs)
	}
	stats.Took = time.Since(start)

	s.logger.Info("search index rebuilt",
		"users", stats.Users,
		"documents", stats.Documents,
		"duration", stats.Took)
	return stats, nil
}

func (s *SearchService) userDocuments(ctx context.Context, userID string) ([]*search.Document, error) {
	habits, err := s.store.ListHabits(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	notes, err := s.store.ListNotes(ctx, userID, "0000-01-01", "9999-12-31")
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	docs := make([]*search.Document, 0, len(habits)+len(goals)+len(notes))
	for _, h := range habits {
		docs = append(docs, search.HabitDocument(h))
	}
	for _, g := range goals {
		docs = append(docs, search.GoalDocument(g))
	}
	for _, n := range notes {
		docs = append(docs, search.NoteDocument(n))
	}
	return docs, nil
}
