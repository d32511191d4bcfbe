package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// SchoolUpdateHandler publishes school-wide updates.
type SchoolUpdateHandler struct {
	service *service.SchoolUpdateService
}

// NewSchoolUpdateHandler constructs a SchoolUpdateHandler.
func NewSchoolUpdateHandler(svc *service.SchoolUpdateService) *SchoolUpdateHandler {
	return &SchoolUpdateHandler{service: svc}
}

// List godoc
// @Summary List school updates
// @Tags Updates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /updates [get]
func (h *SchoolUpdateHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	updates, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updates, nil)
}

// Create godoc
// @Summary Publish a school update
// @Tags Updates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateSchoolUpdateRequest true "Update payload"
// @Success 201 {object} response.Envelope
// @Router /updates [post]
func (h *SchoolUpdateHandler) Create(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	var req dto.CreateSchoolUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid school update payload"))
		return
	}
	update, err := h.service.Create(c.Request.Context(), req, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, update)
}

// Delete godoc
// @Summary Delete a school update
// @Tags Updates
// @Security BearerAuth
// @Param id path string true "Update ID"
// @Success 204
// @Router /updates/{id} [delete]
func (h *SchoolUpdateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
