package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus represents the moderation status of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "Pending"
	ReportStatusResolved  ReportStatus = "Resolved"
	ReportStatusDismissed ReportStatus = "Dismissed"
)

// Report is an independent moderation record filed by an account,
// optionally against a worker
type Report struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	ReporterID       uuid.UUID    `json:"reporter_id" db:"reporter_id"`
	ReportedWorkerID *uuid.UUID   `json:"reported_worker_id,omitempty" db:"reported_worker_id"`
	Reason           string       `json:"reason" db:"reason"`
	ContentType      string       `json:"content_type" db:"content_type"`
	Description      string       `json:"description" db:"description"`
	Status           ReportStatus `json:"status" db:"status"`
	AdminNotes       *string      `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        *time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}
