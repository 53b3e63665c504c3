package service

import (
	"errors"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

// UserService 账号管理（管理员侧）
type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) Get(id uint) (*model.User, error) {
	user, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListByRole(role model.UserRole) ([]*model.User, error) {
	return s.Repo.ListByRole(role)
}

func (s *UserService) SetDisabled(claims *util.Claims, userID uint, disabled bool) error {
	if claims.Role != model.Admin {
		return util.ErrForbidden
	}
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	user.Disabled = disabled
	return s.Repo.Update(user)
}

func (s *UserService) UpdateName(userID uint, name string) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	user.Name = name
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
