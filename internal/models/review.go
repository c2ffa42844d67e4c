package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a client's 1-5 rating plus text for a job, tied 1:1 to a JobRequest
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	JobRequestID uuid.UUID `json:"job_request_id" db:"job_request_id"`
	WorkerID     uuid.UUID `json:"worker_id" db:"worker_id"`
	ClientID     uuid.UUID `json:"client_id" db:"client_id"`
	Rating       int       `json:"rating" db:"rating"`
	ReviewText   string    `json:"review_text" db:"review_text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
