package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/messaging"
	"github.com/hanapbuhay/backend/internal/middleware"
)

// SendMessageRequest is the payload for sending a message
type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversationId" binding:"required"`
	Content        string    `json:"content" binding:"required"`
}

// handleSendMessage appends a message to a conversation the caller is part of
func (s *APIServer) handleSendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	msg, err := s.messagingService.Send(c.Request.Context(), req.ConversationID, accountID, req.Content)
	if err != nil {
		respondMessagingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"messageId": msg.ID,
		"content":   msg.Content,
		"timestamp": msg.SentAt,
	})
}

// handleListConversations lists the caller's conversations, most recently
// active first. ?search filters by counterpart name.
func (s *APIServer) handleListConversations(c *gin.Context) {
	accountID := middleware.GetAccountIDFromContext(c)
	summaries, err := s.messagingService.ListConversations(c.Request.Context(), accountID, c.Query("search"))
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "messaging", "list_conversations")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// handleListMessages lists a conversation's messages in send order
func (s *APIServer) handleListMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid conversation id"))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	messages, err := s.messagingService.ListMessages(c.Request.Context(), conversationID, accountID)
	if err != nil {
		respondMessagingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// handleMarkConversationRead marks the counterpart's messages as read
func (s *APIServer) handleMarkConversationRead(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid conversation id"))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	if err := s.messagingService.MarkConversationRead(c.Request.Context(), conversationID, accountID); err != nil {
		respondMessagingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func respondMessagingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, messaging.ErrConversationNotFound):
		respondError(c, apierrors.NewNotFoundError("Conversation"))
	case errors.Is(err, messaging.ErrNotParticipant):
		respondError(c, apierrors.ErrUnauthorizedError)
	case errors.Is(err, messaging.ErrEmptyMessage):
		respondError(c, apierrors.NewValidationError("Message content must not be empty"))
	default:
		logging.LogError(err, c.GetString("request_id"), "messaging", "request")
		respondError(c, apierrors.ErrPersistenceError)
	}
}
