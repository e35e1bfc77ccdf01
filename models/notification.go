package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks delivery of a notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	RecipientEmail string             `json:"recipient_email" db:"recipient_email"`
	Subject        string             `json:"subject" db:"subject"`
	Body           string             `json:"body" db:"body"`
	Status         NotificationStatus `json:"status" db:"status"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates a pending notification.
func NewNotification(recipientEmail, subject, body string) *Notification {
	return &Notification{
		ID:             uuid.New(),
		RecipientEmail: NormalizeEmail(recipientEmail),
		Subject:        subject,
		Body:           body,
		Status:         NotificationPending,
		CreatedAt:      time.Now().UTC(),
	}
}
