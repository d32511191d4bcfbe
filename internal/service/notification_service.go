package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationService reads and acknowledges a user's notifications.
type NotificationService struct {
	repo notificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the caller's notifications; filter.UserID is always overwritten with userID.
func (s *NotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	filter.UserID = userID
	notifications, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead acknowledges a notification owned by userID.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return internalError(err, "failed to mark notification read")
	}
	return nil
}
