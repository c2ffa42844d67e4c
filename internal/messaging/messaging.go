package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/hanapbuhay/backend/internal/monitoring"
	"github.com/hanapbuhay/backend/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service errors
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("caller is not a participant in this conversation")
	ErrEmptyMessage         = errors.New("message content must not be empty")
)

// Service owns conversations and their append-only message streams
type Service struct {
	db       *pgxpool.Pool
	notifier *notify.Dispatcher
}

// NewService creates a new messaging service
func NewService(db *pgxpool.Pool, notifier *notify.Dispatcher) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
	}
}

// participants resolves a conversation's two account ids plus the caller's
// side. Returns ErrNotParticipant when the caller is neither.
func (s *Service) participants(ctx context.Context, q notify.DBTX, conversationID, callerAccountID uuid.UUID) (counterpartAccountID uuid.UUID, callerName string, err error) {
	var clientAccountID, workerAccountID uuid.UUID
	var clientName, workerName string
	err = q.QueryRow(ctx, `
		SELECT ca.id, cp.first_name || ' ' || cp.last_name,
		       wa.id, wp.first_name || ' ' || wp.last_name
		FROM conversations c
		JOIN client_profiles cp ON cp.id = c.client_id
		JOIN accounts ca ON ca.id = cp.account_id
		JOIN worker_profiles wp ON wp.id = c.worker_id
		JOIN accounts wa ON wa.id = wp.account_id
		WHERE c.id = $1
	`, conversationID).Scan(&clientAccountID, &clientName, &workerAccountID, &workerName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, "", ErrConversationNotFound
		}
		return uuid.Nil, "", fmt.Errorf("failed to resolve conversation participants: %w", err)
	}

	switch callerAccountID {
	case clientAccountID:
		return workerAccountID, clientName, nil
	case workerAccountID:
		return clientAccountID, workerName, nil
	default:
		return uuid.Nil, "", ErrNotParticipant
	}
}

// Send appends a message to the conversation and, in the same transaction,
// bumps the conversation's last activity and notifies the counterpart.
func (s *Service) Send(ctx context.Context, conversationID, callerAccountID uuid.UUID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	counterpartID, senderName, err := s.participants(ctx, tx, conversationID, callerAccountID)
	if err != nil {
		return nil, err
	}

	var msg models.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_id, content, sent_at, seq, is_read
	`, conversationID, callerAccountID, content).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content,
		&msg.SentAt, &msg.Seq, &msg.IsRead,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_message_at = $1 WHERE id = $2
	`, msg.SentAt, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation activity: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID: counterpartID,
		SenderID:    &callerAccountID,
		Title:       "New Message",
		Body:        fmt.Sprintf("%s sent you a message", senderName),
		Type:        models.NotificationTypeMessage,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	monitoring.Get().MessagesSent.Inc()
	return &msg, nil
}

// ListMessages returns a conversation's messages in send order. Ties on
// sent_at resolve by insertion sequence so the order is stable.
func (s *Service) ListMessages(ctx context.Context, conversationID, callerAccountID uuid.UUID) ([]models.Message, error) {
	if _, _, err := s.participants(ctx, s.db, conversationID, callerAccountID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, sender_id, content, sent_at, seq, is_read
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at, seq
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.SentAt, &m.Seq, &m.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards so a filter matches literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListConversations returns the caller's inbox, most recently active first.
// Conversations without messages yet sort by creation time. The optional
// filter matches the counterpart's name, case-insensitively.
func (s *Service) ListConversations(ctx context.Context, callerAccountID uuid.UUID, nameFilter string) ([]models.ConversationSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id,
		       CASE WHEN ca.id = $1
		            THEN wp.first_name || ' ' || wp.last_name
		            ELSE cp.first_name || ' ' || cp.last_name
		       END AS counterpart_name,
		       COALESCE(lm.content, ''),
		       COALESCE(c.last_message_at, c.created_at)
		FROM conversations c
		JOIN client_profiles cp ON cp.id = c.client_id
		JOIN accounts ca ON ca.id = cp.account_id
		JOIN worker_profiles wp ON wp.id = c.worker_id
		JOIN accounts wa ON wa.id = wp.account_id
		LEFT JOIN LATERAL (
			SELECT content FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.sent_at DESC, m.seq DESC
			LIMIT 1
		) lm ON true
		WHERE (ca.id = $1 OR wa.id = $1)
		  AND ($2 = '' OR
		       CASE WHEN ca.id = $1
		            THEN wp.first_name || ' ' || wp.last_name
		            ELSE cp.first_name || ' ' || cp.last_name
		       END ILIKE '%' || $2 || '%')
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
	`, callerAccountID, escapeLike(nameFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var s models.ConversationSummary
		if err := rows.Scan(&s.ConversationID, &s.CounterpartName, &s.LastMessage, &s.LastMessageTime); err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// MarkConversationRead marks the counterpart's messages in the conversation
// as read by the caller.
func (s *Service) MarkConversationRead(ctx context.Context, conversationID, callerAccountID uuid.UUID) error {
	if _, _, err := s.participants(ctx, s.db, conversationID, callerAccountID); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = false
	`, conversationID, callerAccountID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
