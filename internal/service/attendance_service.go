package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
}

// AttendanceService records one status per student per day.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Record upserts the attendance of a student on a date. A second call for the same day replaces the first.
func (s *AttendanceService) Record(ctx context.Context, req dto.RecordAttendanceRequest, recorder *models.User) (*models.Attendance, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil || date == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	record := &models.Attendance{
		StudentID:  req.StudentID,
		ClassID:    req.ClassID,
		Date:       *date,
		Status:     models.AttendanceStatus(req.Status),
		Notes:      req.Notes,
		RecordedBy: recorder.ID,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		if isForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student or class not found")
		}
		return nil, internalError(err, "failed to record attendance")
	}
	return record, nil
}

// List returns attendance matching filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list attendance")
	}
	return records, paginate(filter.Page, filter.PageSize, total), nil
}
