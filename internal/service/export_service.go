package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type registrationLister interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

var registrationExportHeaders = []string{"id", "student_name", "student_dob", "grade_level", "parent_name", "parent_email", "class_id", "status", "submitted_at", "processed_at"}

// ExportService renders registration requests for offline review.
type ExportService struct {
	requests registrationLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(requests registrationLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{requests: requests, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportRegistrations renders every request matching filter as CSV or PDF.
func (s *ExportService) ExportRegistrations(ctx context.Context, format string, filter models.RegistrationFilter) (*dto.RegistrationExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list registration requests")
	}

	data := export.Dataset{Headers: registrationExportHeaders}
	for _, r := range requests {
		data.Append(
			r.ID,
			r.StudentName,
			formatDate(r.StudentDOB),
			deref(r.GradeLevel),
			r.ParentName,
			r.ParentEmail,
			r.ClassID,
			string(r.Status),
			r.SubmittedAt.UTC().Format(time.RFC3339),
			formatTimestamp(r.ProcessedAt),
		)
	}

	stamp := s.now().UTC().Format("20060102-150405")
	result := &dto.RegistrationExport{FileName: fmt.Sprintf("registration-requests-%s.%s", stamp, format)}
	switch format {
	case ExportFormatPDF:
		result.ContentType = "application/pdf"
		result.Content, err = s.pdf.Render(data, "Registration Requests")
	default:
		result.ContentType = "text/csv"
		result.Content, err = s.csv.Render(data)
	}
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}

	s.logger.Info("registration export generated", zap.String("format", format), zap.Int("rows", len(requests)))
	return result, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(dateLayout)
}

func formatTimestamp(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
