package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const messageColumns = `id, sender_id, recipient_id, subject, body, is_read, created_at`

// MessageRepository stores direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts an unread message.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.IsRead = false
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, body, is_read, created_at)
        VALUES (:id, :sender_id, :recipient_id, :subject, :body, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListInbox returns messages addressed to userID, newest first.
func (r *MessageRepository) ListInbox(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	return r.listBy(ctx, "recipient_id", userID, page, size)
}

// ListSent returns messages sent by userID, newest first.
func (r *MessageRepository) ListSent(ctx context.Context, userID string, page, size int) ([]models.Message, error) {
	return r.listBy(ctx, "sender_id", userID, page, size)
}

func (r *MessageRepository) listBy(ctx context.Context, column, userID string, page, size int) ([]models.Message, error) {
	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf("SELECT %s FROM messages WHERE %s = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d", messageColumns, column, limit, offset)
	messages := make([]models.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("list messages by %s: %w", column, err)
	}
	return messages, nil
}

// MarkRead flags a message read. Only the recipient matches; anything else is sql.ErrNoRows.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return requireAffected(res)
}

// FindByID returns a single message.
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	if err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &msg, nil
}
