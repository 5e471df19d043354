package service

import (
	"context"

	"photoalbum/internal/cache"
	"photoalbum/internal/models"
	"photoalbum/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepository
	albumRepo repository.AlbumRepository
}

func NewUserService(userRepo repository.UserRepository, albumRepo repository.AlbumRepository) *UserService {
	return &UserService{userRepo: userRepo, albumRepo: albumRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// GetProfile returns the user with their albums, newest first.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user *models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Albums, err = s.albumRepo.ListByUser(ctx, id); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
