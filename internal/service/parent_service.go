package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type parentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.ParentDetail, error)
	List(ctx context.Context, page, size int) ([]models.ParentDetail, int, error)
}

type childLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// ParentService exposes parent accounts and the students linked to them.
type ParentService struct {
	repo     parentRepository
	students childLister
	logger   *zap.Logger
}

// NewParentService constructs the parent service.
func NewParentService(repo parentRepository, students childLister, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{repo: repo, students: students, logger: logger}
}

// List returns parents with pagination metadata.
func (s *ParentService) List(ctx context.Context, page, size int) ([]models.ParentDetail, *models.Pagination, error) {
	parents, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, internalError(err, "failed to list parents")
	}
	return parents, paginate(page, size, total), nil
}

// Get returns the parent whose user id is userID.
func (s *ParentService) Get(ctx context.Context, userID string) (*models.ParentDetail, error) {
	parent, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, internalError(err, "failed to load parent")
	}
	return parent, nil
}

// Children lists the students linked to parentUserID, including those created by approved registrations.
func (s *ParentService) Children(ctx context.Context, parentUserID string) ([]models.Student, error) {
	students, _, err := s.students.List(ctx, models.StudentFilter{ParentID: parentUserID, PageSize: maxPageSize})
	if err != nil {
		return nil, internalError(err, "failed to list children")
	}
	return students, nil
}
