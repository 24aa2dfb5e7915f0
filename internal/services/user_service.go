package services

import (
	"context"

	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/utils"
)

type UserService interface {
	Me(ctx context.Context, userID, email, role string) (*models.CurrentUser, error)
}

type userService struct {
	profiles ProfileService
}

func NewUserService(profiles ProfileService) UserService {
	return &userService{profiles: profiles}
}

// Me describes the caller from token claims plus whether a profile exists.
func (s *userService) Me(ctx context.Context, userID, email, role string) (*models.CurrentUser, error) {
	const op = "UserService.Me"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "missing user", nil)
	}
	has, err := s.profiles.HasProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = string(models.RoleUser)
	}
	return &models.CurrentUser{ID: userID, Email: email, Role: models.UserRole(role), HasProfile: has}, nil
}
