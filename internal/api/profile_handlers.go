package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get profile",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Profile"},
		Security:    bearer,
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update profile",
		Description: "Changes the display name or timezone. Omitted fields are left alone.",
		Tags:        []string{"Profile"},
		Security:    bearer,
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProfile",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profile",
		Summary:     "Delete account",
		Description: "Deletes the account with all habits, checks, goals and notes",
		Tags:        []string{"Profile"},
		Security:    bearer,
	}, s.handleDeleteProfile)
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Body struct {
		Name     *string `json:"name,omitempty" maxLength:"100" doc:"Display name"`
		Timezone *string `json:"timezone,omitempty" doc:"IANA timezone"`
	}
}

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Profile.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Profile.Update(ctx, userID, service.UpdateProfileRequest{
		Name:     input.Body.Name,
		Timezone: input.Body.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleDeleteProfile(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Profile.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return message("Account deleted"), nil
}
