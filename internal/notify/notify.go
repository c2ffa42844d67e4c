package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/hanapbuhay/backend/internal/monitoring"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("caller is not the notification recipient")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so dispatch can join
// the caller's transaction: a notification must never be visible without its
// triggering event having committed.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Dispatcher writes and reads notification records
type Dispatcher struct {
	db *pgxpool.Pool
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(db *pgxpool.Pool) *Dispatcher {
	return &Dispatcher{db: db}
}

// Params describes a notification to dispatch
type Params struct {
	RecipientID  uuid.UUID
	JobRequestID *uuid.UUID
	SenderID     *uuid.UUID
	Title        string
	Body         string
	Type         models.NotificationType
}

// Notify inserts a notification record using q, which may be an open
// transaction so the write commits atomically with its triggering event.
func (d *Dispatcher) Notify(ctx context.Context, q DBTX, p Params) error {
	_, err := q.Exec(ctx, `
		INSERT INTO notifications (recipient_id, job_request_id, sender_id, title, body, type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.RecipientID, p.JobRequestID, p.SenderID, p.Title, p.Body, p.Type)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	monitoring.Get().NotificationsSent.WithLabelValues(string(p.Type)).Inc()
	return nil
}

// ListForRecipient returns an account's notifications, newest first
func (d *Dispatcher) ListForRecipient(ctx context.Context, accountID uuid.UUID) ([]models.Notification, error) {
	rows, err := d.db.Query(ctx, `
		SELECT id, recipient_id, job_request_id, sender_id, title, body, type, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.JobRequestID, &n.SenderID,
			&n.Title, &n.Body, &n.Type, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkRead flips the read flag. Only the recipient may do so.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID, callerAccountID uuid.UUID) error {
	tag, err := d.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`, notificationID, callerAccountID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := d.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, notificationID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if !exists {
			return ErrNotificationNotFound
		}
		return ErrNotRecipient
	}

	return nil
}
