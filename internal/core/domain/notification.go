package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an append-only message to a user. Only IsRead changes.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification builds an unread notification.
func NewNotification(userID uuid.UUID, message string, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		CreatedAt: now,
	}
}
