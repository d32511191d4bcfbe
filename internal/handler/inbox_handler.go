package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// InboxHandler serves direct messages and notifications for the calling user.
type InboxHandler struct {
	messages      *service.MessageService
	notifications *service.NotificationService
}

// NewInboxHandler constructs an InboxHandler.
func NewInboxHandler(messages *service.MessageService, notifications *service.NotificationService) *InboxHandler {
	return &InboxHandler{messages: messages, notifications: notifications}
}

// SendMessage godoc
// @Summary Send a message
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *InboxHandler) SendMessage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid message payload"))
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), req, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Inbox godoc
// @Summary Received messages
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/inbox [get]
func (h *InboxHandler) Inbox(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	page, size := pageParams(c)
	messages, err := h.messages.Inbox(c.Request.Context(), user.ID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Sent godoc
// @Summary Sent messages
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/sent [get]
func (h *InboxHandler) Sent(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	page, size := pageParams(c)
	messages, err := h.messages.Sent(c.Request.Context(), user.ID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// MarkMessageRead godoc
// @Summary Mark a received message read
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /messages/{id}/read [patch]
func (h *InboxHandler) MarkMessageRead(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), c.Param("id"), user); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Notifications godoc
// @Summary Own notifications, newest first
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *InboxHandler) Notifications(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	page, size := pageParams(c)
	filter := models.NotificationFilter{UnreadOnly: c.Query("unread") == "true", Page: page, PageSize: size}
	notifications, err := h.notifications.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkNotificationRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *InboxHandler) MarkNotificationRead(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
