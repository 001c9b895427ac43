package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/habitoapp/habito-server/internal/errors"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	signup := env.signup(t, "Ana@Example.com")
	assert.NotEmpty(t, signup.AccessToken)
	assert.NotEmpty(t, signup.RefreshToken)
	assert.Equal(t, "Bearer", signup.TokenType)
	assert.Equal(t, "UTC", signup.User.Timezone)

	login, err := env.auth.Login(ctx, LoginRequest{
		Email:    "ana@example.com",
		Password: "correct horse battery",
	}, ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, login.User.ID)
	assert.NotEqual(t, signup.SessionID, login.SessionID)

	claims, err := env.auth.VerifyAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, claims.UserID)
}

func TestAuthService_SignupValidation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "long enough pw"}},
		{"bad email", SignupRequest{Email: "nope", Password: "long enough pw"}},
		{"short password", SignupRequest{Email: "a@b.co", Password: "short"}},
		{"unknown timezone", SignupRequest{Email: "a@b.co", Password: "long enough pw", Timezone: "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Signup(ctx, tt.req, ClientInfo{})
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	env := setupServices(t)
	env.signup(t, "dup@example.com")

	_, err := env.auth.Signup(context.Background(), SignupRequest{
		Email:    "DUP@example.com",
		Password: "another password",
	}, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	env.signup(t, "ana@example.com")

	_, err := env.auth.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "wrong password"}, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "wrong password"}, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	signup := env.signup(t, "ana@example.com")

	refreshed, err := env.auth.Refresh(ctx, signup.RefreshToken, ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, signup.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, signup.User.ID, refreshed.User.ID)

	_, err = env.auth.Refresh(ctx, signup.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired, "old refresh token must stop working")
}

func TestAuthService_Logout(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	signup := env.signup(t, "ana@example.com")

	require.NoError(t, env.auth.Logout(ctx, signup.RefreshToken))
	require.NoError(t, env.auth.Logout(ctx, signup.RefreshToken), "logout is idempotent")

	_, err := env.auth.Refresh(ctx, signup.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_PasswordReset(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	signup := env.signup(t, "ana@example.com")

	require.NoError(t, env.auth.ForgotPassword(ctx, "ana@example.com"))
	token := env.notifier.Token(signup.User.ID)
	require.NotEmpty(t, token)

	require.NoError(t, env.auth.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "a brand new secret"}))

	// Every session was revoked.
	_, err := env.auth.Refresh(ctx, signup.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "correct horse battery"}, ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "a brand new secret"}, ClientInfo{})
	assert.NoError(t, err)

	// Tokens are single use.
	err = env.auth.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "yet another secret"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	env := setupServices(t)
	assert.NoError(t, env.auth.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, env.notifier.tokens)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	signup := env.signup(t, "ana@example.com")
	require.NoError(t, env.profile.Delete(ctx, signup.User.ID))

	_, err = env.auth.VerifyAccessToken(ctx, signup.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
