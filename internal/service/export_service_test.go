package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

type stubRegistrationLister struct {
	items  []models.RegistrationRequest
	err    error
	filter models.RegistrationFilter
}

func (s *stubRegistrationLister) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error) {
	s.filter = filter
	return s.items, s.err
}

type stubPDF struct{ title string }

func (s *stubPDF) Render(data export.Dataset, title string) ([]byte, error) {
	s.title = title
	return []byte("%PDF-stub"), nil
}

func TestExportRegistrationsCSV(t *testing.T) {
	processed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	dob := time.Date(2015, 3, 14, 0, 0, 0, 0, time.UTC)
	grade := "7"
	lister := &stubRegistrationLister{items: []models.RegistrationRequest{{
		ID:          "r-1",
		StudentName: "Ana Lopez",
		StudentDOB:  &dob,
		GradeLevel:  &grade,
		ParentName:  "Maria Lopez",
		ParentEmail: "maria@example.com",
		ClassID:     "c-1",
		Status:      models.RegistrationApproved,
		SubmittedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		ProcessedAt: &processed,
	}}}
	svc := NewExportService(lister, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC) }

	out, err := svc.ExportRegistrations(context.Background(), "CSV", models.RegistrationFilter{})
	require.NoError(t, err)
	assert.Equal(t, "registration-requests-20260303-100000.csv", out.FileName)
	assert.Equal(t, "text/csv", out.ContentType)

	lines := strings.Split(strings.TrimSpace(string(out.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(registrationExportHeaders, ","), lines[0])
	assert.Equal(t, "r-1,Ana Lopez,2015-03-14,7,Maria Lopez,maria@example.com,c-1,approved,2026-03-01T08:00:00Z,2026-03-02T09:00:00Z", lines[1])
}

func TestExportRegistrationsPDFPassesFilter(t *testing.T) {
	lister := &stubRegistrationLister{}
	pdf := &stubPDF{}
	svc := NewExportService(lister, nil, pdf, nil)
	status := models.RegistrationPending

	out, err := svc.ExportRegistrations(context.Background(), "pdf", models.RegistrationFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "Registration Requests", pdf.title)
	require.NotNil(t, lister.filter.Status)
	assert.Equal(t, models.RegistrationPending, *lister.filter.Status)
}

func TestExportRegistrationsErrors(t *testing.T) {
	svc := NewExportService(&stubRegistrationLister{}, nil, nil, nil)
	_, err := svc.ExportRegistrations(context.Background(), "xlsx", models.RegistrationFilter{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	svc = NewExportService(&stubRegistrationLister{err: errors.New("db down")}, nil, nil, nil)
	_, err = svc.ExportRegistrations(context.Background(), "", models.RegistrationFilter{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}
