package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	classes   classChecker
	users     userLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classes classChecker, users userLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, users: users, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create adds a student record directly, outside the registration workflow.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	student := &models.Student{}
	if err := s.apply(ctx, student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update replaces the editable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return internalError(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

func (s *StudentService) apply(ctx context.Context, student *models.Student, req dto.CreateStudentRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid student payload")
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date_of_birth must be YYYY-MM-DD")
	}
	if req.ClassID != nil {
		ok, err := s.classes.Exists(ctx, *req.ClassID)
		if err != nil {
			return internalError(err, "failed to check class")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "class not found")
		}
	}
	if req.ParentID != nil {
		parent, err := s.users.FindByID(ctx, *req.ParentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return internalError(err, "failed to check parent")
		}
		if parent == nil || parent.Role != models.RoleParent {
			return appErrors.Clone(appErrors.ErrValidation, "parent_id must reference a parent account")
		}
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.DateOfBirth = dob
	student.GradeLevel = req.GradeLevel
	student.ClassID = req.ClassID
	student.ParentID = req.ParentID
	student.ParentName = req.ParentName
	student.ParentEmail = req.ParentEmail
	return nil
}
