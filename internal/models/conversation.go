package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the messaging channel created once a job request is accepted.
// At most one conversation exists per job request.
type Conversation struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ClientID      uuid.UUID  `json:"client_id" db:"client_id"`
	WorkerID      uuid.UUID  `json:"worker_id" db:"worker_id"`
	JobRequestID  uuid.UUID  `json:"job_request_id" db:"job_request_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	IsActive      bool       `json:"is_active" db:"is_active"`
}

// ConversationSummary is a conversation as presented in a caller's inbox
type ConversationSummary struct {
	ConversationID  uuid.UUID `json:"conversation_id"`
	CounterpartName string    `json:"counterpart_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}
