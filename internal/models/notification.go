package models

import "time"

// NotificationType tags the event that produced a notification.
type NotificationType string

const (
	NotificationRegistrationApproved NotificationType = "registration_approved"
	NotificationRegistrationRejected NotificationType = "registration_rejected"
)

// Notification is addressed to a single user.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter scopes a user's notification listing.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
