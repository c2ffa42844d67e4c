package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the workflow status of a job request
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusAccepted  JobStatus = "Accepted"
	JobStatusRejected  JobStatus = "Rejected"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusReviewed  JobStatus = "Reviewed"
)

// JobRequest represents one client's booking ask to one worker.
// Immutable after creation except for Status.
type JobRequest struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ClientID       uuid.UUID `json:"client_id" db:"client_id"`
	WorkerID       uuid.UUID `json:"worker_id" db:"worker_id"`
	ServiceDetails string    `json:"service_details" db:"service_details"`
	Status         JobStatus `json:"status" db:"status"`
	RequestedAt    time.Time `json:"requested_at" db:"requested_at"`
}
