package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/id"
	"github.com/habitoapp/habito-server/internal/store"
)

// SessionService issues and rotates refresh sessions.
type SessionService struct {
	sessions store.SessionStore
	users    store.UserStore
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(sessions store.SessionStore, users store.UserStore, tokens *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{sessions: sessions, users: users, tokens: tokens, logger: logger}
}

// ClientInfo describes the caller of a login or refresh.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SessionResponse carries a token pair.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

// CreateSession issues a new token pair for user.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User, client ClientInfo) (*SessionResponse, error) {
	refreshToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashOpaqueToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        client.IPAddress,
		UserAgent:        client.UserAgent,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s.respond(user, session, refreshToken)
}

// RefreshSession rotates the refresh token. The presented token stops
// working.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string, client ClientInfo) (*SessionResponse, *domain.User, error) {
	session, err := s.sessions.GetSessionByTokenHash(ctx, auth.HashOpaqueToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.TokenExpired("invalid or expired refresh token").WithCause(err)
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		_ = s.sessions.DeleteSession(ctx, session.ID)
		return nil, nil, storeError(err, "user")
	}

	newToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, nil, err
	}
	session.RefreshTokenHash = auth.HashOpaqueToken(newToken)
	session.Touch()
	if client.IPAddress != "" {
		session.IPAddress = client.IPAddress
	}
	if client.UserAgent != "" {
		session.UserAgent = client.UserAgent
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	resp, err := s.respond(user, session, newToken)
	if err != nil {
		return nil, nil, err
	}
	return resp, user, nil
}

// RevokeByToken ends the session holding refreshToken. Unknown tokens are
// ignored.
func (s *SessionService) RevokeByToken(ctx context.Context, refreshToken string) error {
	session, err := s.sessions.GetSessionByTokenHash(ctx, auth.HashOpaqueToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}
	return s.sessions.DeleteSession(ctx, session.ID)
}

// RevokeAll ends every session of userID.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return s.sessions.DeleteUserSessions(ctx, userID)
}

func (s *SessionService) respond(user *domain.User, session *domain.Session, refreshToken string) (*SessionResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTokenDuration().Seconds()),
		SessionID:    session.ID,
	}, nil
}
