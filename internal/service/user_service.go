package service

import (
	"context"
	"fmt"

	"go-blog-app/internal/logger"
)

// AvatarSaver downloads a remote avatar. It returns the stored location and
// true, or the original URL and false.
type AvatarSaver interface {
	Save(ctx context.Context, url string) (string, bool)
}

// UserService manages user profile data.
type UserService struct {
	repo    UserRepository
	avatars AvatarSaver
	log     logger.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo UserRepository, avatars AvatarSaver, log logger.Logger) *UserService {
	return &UserService{repo: repo, avatars: avatars, log: log}
}

// RefreshAvatar stores a copy of url as the user's avatar. When the download
// fails the remote URL is kept as the avatar and stored is false.
func (s *UserService) RefreshAvatar(ctx context.Context, userID int64, url string) (location string, stored bool, err error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return "", false, err
	}
	location, stored = s.avatars.Save(ctx, url)
	if err := s.repo.UpdateAvatar(ctx, userID, location); err != nil {
		return "", false, fmt.Errorf("failed to save avatar of user %d: %w", userID, err)
	}
	return location, stored, nil
}
