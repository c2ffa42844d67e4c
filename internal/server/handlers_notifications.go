package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/notify"
)

// handleListNotifications lists the caller's notifications, newest first
func (s *APIServer) handleListNotifications(c *gin.Context) {
	accountID := middleware.GetAccountIDFromContext(c)
	notifications, err := s.notifier.ListForRecipient(c.Request.Context(), accountID)
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "notify", "list")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// handleMarkNotificationRead marks one of the caller's notifications as read
func (s *APIServer) handleMarkNotificationRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid notification id"))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	if err := s.notifier.MarkRead(c.Request.Context(), notificationID, accountID); err != nil {
		switch {
		case errors.Is(err, notify.ErrNotificationNotFound):
			respondError(c, apierrors.NewNotFoundError("Notification"))
		case errors.Is(err, notify.ErrNotRecipient):
			respondError(c, apierrors.ErrUnauthorizedError)
		default:
			logging.LogError(err, c.GetString("request_id"), "notify", "mark_read")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
