package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one append-only entry in a conversation.
// Ordering is by SentAt with Seq breaking exact-timestamp ties.
type Message struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ConversationID uuid.UUID `json:"conversation_id" db:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	SentAt         time.Time `json:"sent_at" db:"sent_at"`
	Seq            int64     `json:"-" db:"seq"`
	IsRead         bool      `json:"is_read" db:"is_read"`
}
