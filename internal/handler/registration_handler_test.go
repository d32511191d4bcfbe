package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const requestID = "5b0f7c1e-8f5e-4b53-9d1b-2c3d4e5f6a7b"

type stubWorkflow struct {
	submitted  *dto.RegistrationSubmission
	lastFilter models.RegistrationFilter
	decideErr  error
}

func (s *stubWorkflow) Submit(_ context.Context, in dto.RegistrationSubmission) (*models.RegistrationRequest, error) {
	s.submitted = &in
	return &models.RegistrationRequest{
		ID:          requestID,
		StudentName: in.StudentName,
		ParentName:  in.ParentName,
		ParentEmail: in.ParentEmail,
		ClassID:     in.ClassID,
		Status:      models.RegistrationPending,
		SubmittedAt: time.Now(),
	}, nil
}

func (s *stubWorkflow) List(_ context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error) {
	s.lastFilter = filter
	return []models.RegistrationRequest{}, nil
}

func (s *stubWorkflow) Get(_ context.Context, id string) (*models.RegistrationRequest, error) {
	if id != requestID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
	}
	return &models.RegistrationRequest{ID: id, Status: models.RegistrationPending}, nil
}

func (s *stubWorkflow) Approve(_ context.Context, id string) (*dto.RegistrationDecision, error) {
	if s.decideErr != nil {
		return nil, s.decideErr
	}
	studentID := "student-1"
	return &dto.RegistrationDecision{
		Message:   "registration request approved",
		Request:   &models.RegistrationRequest{ID: id, Status: models.RegistrationApproved},
		StudentID: &studentID,
	}, nil
}

func (s *stubWorkflow) Reject(_ context.Context, id string) (*dto.RegistrationDecision, error) {
	if s.decideErr != nil {
		return nil, s.decideErr
	}
	return &dto.RegistrationDecision{
		Message: "registration request rejected",
		Request: &models.RegistrationRequest{ID: id, Status: models.RegistrationRejected},
	}, nil
}

type stubExporter struct{ format string }

func (s *stubExporter) ExportRegistrations(_ context.Context, format string, _ models.RegistrationFilter) (*dto.RegistrationExport, error) {
	s.format = format
	if format == "xml" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &dto.RegistrationExport{FileName: "registration-requests.csv", ContentType: "text/csv", Content: []byte("ID\n")}, nil
}

func newRegistrationRouter(workflow *stubWorkflow, exporter *stubExporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(workflow, exporter)
	r := gin.New()
	r.POST("/registration-request", h.Submit)
	r.GET("/registration-requests", h.List)
	r.GET("/registration-requests/export", h.Export)
	r.GET("/registration-requests/:id", h.Get)
	r.PATCH("/registration-requests/:id/approve", h.Approve)
	r.PATCH("/registration-requests/:id/reject", h.Reject)
	return r
}

func perform(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRegistration(t *testing.T) {
	workflow := &stubWorkflow{}
	r := newRegistrationRouter(workflow, &stubExporter{})

	body := []byte(`{"studentName":"Ana","parentName":"Rita","parentEmail":"rita@example.com","classId":"` + requestID + `"}`)
	rec := perform(r, http.MethodPost, "/registration-request", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload struct {
		Data struct {
			Message string `json:"message"`
			Request struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"request"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "registration request submitted", payload.Data.Message)
	assert.Equal(t, "pending", payload.Data.Request.Status)
	require.NotNil(t, workflow.submitted)
	assert.Equal(t, "rita@example.com", workflow.submitted.ParentEmail)
}

func TestSubmitRegistrationMalformedBody(t *testing.T) {
	r := newRegistrationRouter(&stubWorkflow{}, &stubExporter{})
	rec := perform(r, http.MethodPost, "/registration-request", []byte(`{"studentName":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestListRegistrationsParsesStatus(t *testing.T) {
	workflow := &stubWorkflow{}
	r := newRegistrationRouter(workflow, &stubExporter{})

	rec := perform(r, http.MethodGet, "/registration-requests?status=PENDING", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, workflow.lastFilter.Status)
	assert.Equal(t, models.RegistrationPending, *workflow.lastFilter.Status)
}

func TestDecisionResponses(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		err    error
		status int
		want   string
	}{
		{"approve", "/registration-requests/" + requestID + "/approve", nil, http.StatusOK, `"studentId":"student-1"`},
		{"reject", "/registration-requests/" + requestID + "/reject", nil, http.StatusOK, `"status":"rejected"`},
		{"missing", "/registration-requests/" + requestID + "/approve", appErrors.Clone(appErrors.ErrNotFound, "registration request not found"), http.StatusNotFound, "NOT_FOUND"},
		{"already processed", "/registration-requests/" + requestID + "/reject", appErrors.Clone(appErrors.ErrConflict, "registration request already processed"), http.StatusConflict, "already processed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRegistrationRouter(&stubWorkflow{decideErr: tc.err}, &stubExporter{})
			rec := perform(r, http.MethodPatch, tc.path, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestGetRegistrationNotFound(t *testing.T) {
	r := newRegistrationRouter(&stubWorkflow{}, &stubExporter{})
	rec := perform(r, http.MethodGet, "/registration-requests/0b6a3f43-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportRegistrations(t *testing.T) {
	exporter := &stubExporter{}
	r := newRegistrationRouter(&stubWorkflow{}, exporter)

	rec := perform(r, http.MethodGet, "/registration-requests/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="registration-requests.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID\n", rec.Body.String())

	rec = perform(r, http.MethodGet, "/registration-requests/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
