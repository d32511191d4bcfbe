package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type registrationWorkflow interface {
	Submit(ctx context.Context, in dto.RegistrationSubmission) (*models.RegistrationRequest, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error)
	Get(ctx context.Context, id string) (*models.RegistrationRequest, error)
	Approve(ctx context.Context, id string) (*dto.RegistrationDecision, error)
	Reject(ctx context.Context, id string) (*dto.RegistrationDecision, error)
}

type registrationExporter interface {
	ExportRegistrations(ctx context.Context, format string, filter models.RegistrationFilter) (*dto.RegistrationExport, error)
}

// RegistrationHandler exposes the registration-approval workflow.
type RegistrationHandler struct {
	workflow registrationWorkflow
	exporter registrationExporter
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(workflow registrationWorkflow, exporter registrationExporter) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow, exporter: exporter}
}

// Submit godoc
// @Summary Submit a registration request
// @Description Public endpoint for parents to apply for a student place. The request starts pending.
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationSubmission true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registration-request [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.RegistrationSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration request payload"))
		return
	}
	created, err := h.workflow.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.RegistrationSubmitted{Message: "registration request submitted", Request: created})
}

// List godoc
// @Summary List registration requests
// @Description Newest first, optionally filtered by status
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /registration-requests [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	requests, err := h.workflow.List(c.Request.Context(), registrationFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get a registration request
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registration-requests/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	request, err := h.workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve a registration request
// @Description Creates the student and, when a parent account matches the e-mail, a notification
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registration-requests/{id}/approve [patch]
func (h *RegistrationHandler) Approve(c *gin.Context) {
	decision, err := h.workflow.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// Reject godoc
// @Summary Reject a registration request
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registration-requests/{id}/reject [patch]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	decision, err := h.workflow.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// Export godoc
// @Summary Export registration requests
// @Tags Registration
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "pending, approved or rejected"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /registration-requests/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	out, err := h.exporter.ExportRegistrations(c.Request.Context(), c.Query("format"), registrationFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, out.ContentType, out.Content)
}

func registrationFilter(c *gin.Context) models.RegistrationFilter {
	var filter models.RegistrationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.RegistrationStatus(strings.ToLower(raw))
		filter.Status = &status
	}
	return filter
}
