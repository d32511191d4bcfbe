package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type userDirectory interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// UserService lists accounts for administrators.
type UserService struct {
	repo userDirectory
}

// NewUserService constructs a UserService.
func NewUserService(repo userDirectory) *UserService {
	return &UserService{repo: repo}
}

// List returns accounts matching filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserInfo, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid role filter")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}
	out := make([]models.UserInfo, 0, len(users))
	for i := range users {
		out = append(out, models.NewUserInfo(&users[i]))
	}
	return out, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	info := models.NewUserInfo(user)
	return &info, nil
}
