package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const classCachePrefix = "classes"

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classPage struct {
	Items []models.Class `json:"items"`
	Total int            `json:"total"`
}

// ClassService coordinates class operations. Listings are cached until the next write.
type ClassService struct {
	repo      classRepository
	students  childLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService. cache may be nil.
func NewClassService(repo classRepository, students childLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns classes matching filter.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	var page classPage
	key := Key(classCachePrefix, "list", filter.GradeLevel, filter.TeacherID, strings.ToLower(filter.Search), strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize))
	err := s.cache.Remember(ctx, key, &page, func() error {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		page = classPage{Items: items, Total: total}
		return nil
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to list classes")
	}
	return page.Items, paginate(filter.Page, filter.PageSize, page.Total), nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	return class, nil
}

// Students lists the students enrolled in class id.
func (s *ClassService) Students(ctx context.Context, id string, page, size int) ([]models.Student, *models.Pagination, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	students, total, err := s.students.List(ctx, models.StudentFilter{ClassID: id, Page: page, PageSize: size})
	if err != nil {
		return nil, nil, internalError(err, "failed to list class students")
	}
	return students, paginate(page, size, total), nil
}

// Create adds a class.
func (s *ClassService) Create(ctx context.Context, req dto.ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class := &models.Class{Name: strings.TrimSpace(req.Name), GradeLevel: strings.TrimSpace(req.GradeLevel), TeacherID: req.TeacherID, Room: req.Room}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, s.writeError(err, "failed to create class")
	}
	s.cache.Invalidate(ctx, classCachePrefix)
	return class, nil
}

// Update replaces a class.
func (s *ClassService) Update(ctx context.Context, id string, req dto.ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class := &models.Class{ID: id, Name: strings.TrimSpace(req.Name), GradeLevel: strings.TrimSpace(req.GradeLevel), TeacherID: req.TeacherID, Room: req.Room}
	if err := s.repo.Update(ctx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, s.writeError(err, "failed to update class")
	}
	s.cache.Invalidate(ctx, classCachePrefix)
	return s.Get(ctx, id)
}

// Delete removes a class. Classes still referenced by registration requests cannot be deleted.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if isForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "class is referenced by registration requests")
		}
		return internalError(err, "failed to delete class")
	}
	s.cache.Invalidate(ctx, classCachePrefix)
	return nil
}

func (s *ClassService) writeError(err error, message string) error {
	if isForeignKeyViolation(err) {
		return appErrors.Clone(appErrors.ErrValidation, "teacher not found")
	}
	return internalError(err, message)
}
