package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type teacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error)
	List(ctx context.Context, page, size int) ([]models.TeacherDetail, int, error)
	Update(ctx context.Context, teacher *models.Teacher) error
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers with pagination metadata.
func (s *TeacherService) List(ctx context.Context, page, size int) ([]models.TeacherDetail, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, internalError(err, "failed to list teachers")
	}
	return teachers, paginate(page, size, total), nil
}

// Get returns a teacher by user id.
func (s *TeacherService) Get(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, internalError(err, "failed to load teacher")
	}
	return teacher, nil
}

// Update edits the teacher's subject and phone.
func (s *TeacherService) Update(ctx context.Context, userID string, req dto.UpdateTeacherRequest) (*models.TeacherDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher := &models.Teacher{UserID: userID, Subject: req.Subject, Phone: req.Phone}
	if err := s.repo.Update(ctx, teacher); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, internalError(err, "failed to update teacher")
	}
	return s.Get(ctx, userID)
}
