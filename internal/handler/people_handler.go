package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// PeopleHandler serves the user, parent and teacher directories.
type PeopleHandler struct {
	users    *service.UserService
	parents  *service.ParentService
	teachers *service.TeacherService
}

// NewPeopleHandler constructs a PeopleHandler.
func NewPeopleHandler(users *service.UserService, parents *service.ParentService, teachers *service.TeacherService) *PeopleHandler {
	return &PeopleHandler{users: users, parents: parents, teachers: teachers}
}

// ListUsers godoc
// @Summary List accounts
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param role query string false "student, parent, teacher or admin"
// @Param search query string false "Search by name, username or e-mail"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *PeopleHandler) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.UserFilter{Search: c.Query("search"), Page: page, PageSize: size}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}
	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// GetUser godoc
// @Summary Get account
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [get]
func (h *PeopleHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ListParents godoc
// @Summary List parents
// @Tags Parents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parents [get]
func (h *PeopleHandler) ListParents(c *gin.Context) {
	page, size := pageParams(c)
	parents, pagination, err := h.parents.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parents, pagination)
}

// GetParent godoc
// @Summary Get parent
// @Tags Parents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Parent user ID"
// @Success 200 {object} response.Envelope
// @Router /parents/{id} [get]
func (h *PeopleHandler) GetParent(c *gin.Context) {
	parent, err := h.parents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parent, nil)
}

// MyChildren godoc
// @Summary Students linked to the calling parent
// @Tags Parents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parents/me/students [get]
func (h *PeopleHandler) MyChildren(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	students, err := h.parents.Children(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags Teachers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *PeopleHandler) ListTeachers(c *gin.Context) {
	page, size := pageParams(c)
	teachers, pagination, err := h.teachers.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// GetTeacher godoc
// @Summary Get teacher
// @Tags Teachers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Teacher user ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *PeopleHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// UpdateTeacher godoc
// @Summary Update teacher
// @Tags Teachers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Teacher user ID"
// @Param payload body dto.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *PeopleHandler) UpdateTeacher(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}
