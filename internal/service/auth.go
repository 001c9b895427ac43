package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/domain"
	domainerrors "github.com/habitoapp/habito-server/internal/errors"
	"github.com/habitoapp/habito-server/internal/id"
	"github.com/habitoapp/habito-server/internal/store"
	"github.com/habitoapp/habito-server/internal/validation"
)

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *domain.User, token string) error
}

// LogNotifier writes reset tokens to the debug log. There is no mailer.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendPasswordReset(_ context.Context, user *domain.User, token string) error {
	n.Logger.Debug("password reset requested", "user_id", user.ID, "token", token)
	return nil
}

// AuthService handles signup, login and password recovery. Session
// lifecycle is delegated to SessionService.
type AuthService struct {
	users           store.UserStore
	resets          store.SessionStore
	tokens          *auth.TokenService
	sessions        *SessionService
	notifier        ResetNotifier
	validator       *validation.Validator
	defaultTimezone string
	resetTTL        time.Duration
	logger          *slog.Logger
}

// AuthConfig holds the knobs AuthService needs from configuration.
type AuthConfig struct {
	DefaultTimezone string
	ResetTTL        time.Duration
}

// NewAuthService creates an authentication service.
func NewAuthService(
	users store.UserStore,
	resets store.SessionStore,
	tokens *auth.TokenService,
	sessions *SessionService,
	notifier ResetNotifier,
	v *validation.Validator,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthService {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	return &AuthService{
		users:           users,
		resets:          resets,
		tokens:          tokens,
		sessions:        sessions,
		notifier:        notifier,
		validator:       v,
		defaultTimezone: cfg.DefaultTimezone,
		resetTTL:        cfg.ResetTTL,
		logger:          logger,
	}
}

// SignupRequest creates an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=100"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest completes a password recovery.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// AuthResponse is returned after signup, login and refresh.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Signup creates an account and logs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest, client ClientInfo) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.defaultTimezone
	}
	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Timezone:     tz,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.sessions.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same answer as a wrong password.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
				s.logger.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := s.users.TouchUserLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login time", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = time.Now()

	session, err := s.sessions.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Refresh rotates a refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domainerrors.Validation("refresh_token is required")
	}
	session, user, err := s.sessions.RefreshSession(ctx, refreshToken, client)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Logout ends the session holding refreshToken.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return domainerrors.Validation("refresh_token is required")
	}
	return s.sessions.RevokeByToken(ctx, refreshToken)
}

// ForgotPassword starts a password reset. It reports success whether or
// not the address has an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.validator.Var("email", strings.TrimSpace(email), "required,email"); err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	reset := &domain.PasswordReset{
		TokenHash: auth.HashOpaqueToken(token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.SaveReset(ctx, reset); err != nil {
		return fmt.Errorf("save reset: %w", err)
	}
	if err := s.notifier.SendPasswordReset(ctx, user, token); err != nil {
		s.logger.Warn("failed to deliver reset token", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword sets a new password with a reset token and signs the user
// out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	reset, err := s.resets.TakeReset(ctx, auth.HashOpaqueToken(req.Token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.TokenExpired("invalid or expired reset token")
		}
		return fmt.Errorf("take reset: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, reset.UserID, hash); err != nil {
		return storeError(err, "user")
	}
	if err := s.sessions.RevokeAll(ctx, reset.UserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.logger.Info("password reset", "user_id", reset.UserID)
	return nil
}

// VerifyAccessToken checks an access token and that its user still exists.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}
	if _, err := s.users.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return claims, nil
}
