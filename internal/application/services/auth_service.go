package services

import (
	"context"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/auth"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
)

// AuthService handles login and session issuance.
type AuthService struct {
	users UserDirectory
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserDirectory) *AuthService {
	return &AuthService{users: users}
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := auth.GenerateToken(auth.UserSession{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		RoleID:   user.RoleID,
		RegionID: user.RegionID,
	})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
