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

const updateCachePrefix = "updates"

type schoolUpdateRepository interface {
	Create(ctx context.Context, update *models.SchoolUpdate) error
	List(ctx context.Context, page, size int) ([]models.SchoolUpdate, error)
	Delete(ctx context.Context, id string) error
}

// SchoolUpdateService publishes school-wide announcements.
type SchoolUpdateService struct {
	repo      schoolUpdateRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolUpdateService constructs a SchoolUpdateService. cache may be nil.
func NewSchoolUpdateService(repo schoolUpdateRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SchoolUpdateService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolUpdateService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns updates newest first.
func (s *SchoolUpdateService) List(ctx context.Context, page, size int) ([]models.SchoolUpdate, error) {
	var updates []models.SchoolUpdate
	err := s.cache.Remember(ctx, Key(updateCachePrefix, "list", strconv.Itoa(page), strconv.Itoa(size)), &updates, func() error {
		var err error
		updates, err = s.repo.List(ctx, page, size)
		return err
	})
	if err != nil {
		return nil, internalError(err, "failed to list school updates")
	}
	return updates, nil
}

// Create publishes an update authored by author.
func (s *SchoolUpdateService) Create(ctx context.Context, req dto.CreateSchoolUpdateRequest, author *models.User) (*models.SchoolUpdate, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid school update payload")
	}
	update := &models.SchoolUpdate{Title: req.Title, Content: req.Content, AuthorID: author.ID}
	if err := s.repo.Create(ctx, update); err != nil {
		return nil, internalError(err, "failed to publish school update")
	}
	s.cache.Invalidate(ctx, updateCachePrefix)
	s.logger.Info("school update published", zap.String("update_id", update.ID), zap.String("author_id", author.ID))
	return update, nil
}

// Delete removes an update.
func (s *SchoolUpdateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "school update not found")
		}
		return internalError(err, "failed to delete school update")
	}
	s.cache.Invalidate(ctx, updateCachePrefix)
	return nil
}
