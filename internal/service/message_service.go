package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListInbox(ctx context.Context, userID string, page, size int) ([]models.Message, error)
	ListSent(ctx context.Context, userID string, page, size int) ([]models.Message, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

// MessageService delivers direct messages between accounts.
type MessageService struct {
	repo      messageRepository
	users     userLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, users userLookup, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{repo: repo, users: users, validator: validate, logger: logger}
}

// Send stores a message from sender to an existing recipient.
func (s *MessageService) Send(ctx context.Context, req dto.SendMessageRequest, sender *models.User) (*models.Message, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid message payload")
	}
	if _, err := s.users.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "recipient not found")
		}
		return nil, internalError(err, "failed to check recipient")
	}

	msg := &models.Message{SenderID: sender.ID, RecipientID: req.RecipientID, Subject: req.Subject, Body: req.Body}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, internalError(err, "failed to send message")
	}
	return msg, nil
}

// Inbox lists messages received by userID.
func (s *MessageService) Inbox(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	messages, err := s.repo.ListInbox(ctx, userID, page, size)
	if err != nil {
		return nil, internalError(err, "failed to list inbox")
	}
	return messages, nil
}

// Sent lists messages sent by userID.
func (s *MessageService) Sent(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	messages, err := s.repo.ListSent(ctx, userID, page, size)
	if err != nil {
		return nil, internalError(err, "failed to list sent messages")
	}
	return messages, nil
}

// MarkRead flags a message read. Only its recipient may do so.
func (s *MessageService) MarkRead(ctx context.Context, id string, recipient *models.User) error {
	if err := s.repo.MarkRead(ctx, id, recipient.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "message not found")
		}
		return internalError(err, "failed to mark message read")
	}
	return nil
}
