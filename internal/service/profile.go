package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/habitoapp/habito-server/internal/domain"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/validation"
)

// ProfileService reads and edits the caller's account.
type ProfileService struct {
	users     store.UserStore
	sessions  *SessionService
	indexer   SearchIndexer
	publisher events.Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(
	users store.UserStore,
	sessions *SessionService,
	indexer SearchIndexer,
	publisher events.Publisher,
	v *validation.Validator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:     users,
		sessions:  sessions,
		indexer:   indexer,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

// UpdateProfileRequest changes name and timezone. Nil fields are left
// alone.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Update applies req to the user's profile. Changing the timezone moves
// where future days are cut; existing checks keep their days.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateUserProfile(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}

// Delete removes the account and everything it owns, signs it out and
// drops its search documents.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return storeError(err, "user")
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	removed, err := s.indexer.RemoveUser(userID)
	if err != nil {
		s.logger.Warn("failed to remove search documents", "user_id", userID, "error", err)
	}
	publish(ctx, s.publisher, s.logger, events.New(events.UserDeleted, userID, nil))

	s.logger.Info("account deleted", "user_id", userID, "search_documents", removed)
	return nil
}
