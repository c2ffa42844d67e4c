package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the event that produced a notification
type NotificationType string

const (
	NotificationTypeBooking NotificationType = "booking"
	NotificationTypeMessage NotificationType = "message"
	NotificationTypeReview  NotificationType = "review"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is a one-way, read-tracked event record delivered to an account.
// Only the read flag mutates after creation.
type Notification struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	RecipientID  uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	JobRequestID *uuid.UUID       `json:"job_request_id,omitempty" db:"job_request_id"`
	SenderID     *uuid.UUID       `json:"sender_id,omitempty" db:"sender_id"`
	Title        string           `json:"title" db:"title"`
	Body         string           `json:"message" db:"body"`
	Type         NotificationType `json:"type" db:"type"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
