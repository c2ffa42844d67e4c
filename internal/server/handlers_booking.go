package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/booking"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/middleware"
)

// CreateBookingRequest is the payload for creating a booking request
type CreateBookingRequest struct {
	WorkerID       uuid.UUID `json:"workerId" binding:"required"`
	ServiceDetails string    `json:"serviceDetails" binding:"required"`
}

// handleCreateBooking files a new booking request against a worker
func (s *APIServer) handleCreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	job, err := s.bookingService.CreateRequest(c.Request.Context(), accountID, req.WorkerID, req.ServiceDetails)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrWorkerNotFound):
			respondError(c, apierrors.NewNotFoundError("Worker"))
		case errors.Is(err, booking.ErrClientProfileRequired):
			respondError(c, apierrors.NewInvalidRequestError("Complete your client profile before booking"))
		default:
			logging.LogError(err, c.GetString("request_id"), "booking", "create")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	logging.LogBookingEvent(c.GetString("request_id"), job.ID.String(), string(job.Status))
	c.JSON(http.StatusCreated, gin.H{"jobRequestId": job.ID})
}

// handleListPendingBookings lists the calling worker's pending requests
func (s *APIServer) handleListPendingBookings(c *gin.Context) {
	accountID := middleware.GetAccountIDFromContext(c)
	requests, err := s.bookingService.ListPendingForWorker(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, booking.ErrWorkerProfileRequired) {
			respondError(c, apierrors.NewInvalidRequestError("Complete your worker profile first"))
		} else {
			logging.LogError(err, c.GetString("request_id"), "booking", "list_pending")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// handleAcceptBooking accepts a pending booking request
func (s *APIServer) handleAcceptBooking(c *gin.Context) {
	s.decideBooking(c, "Accepted", s.bookingService.Accept)
}

// handleRejectBooking rejects a pending booking request
func (s *APIServer) handleRejectBooking(c *gin.Context) {
	s.decideBooking(c, "Rejected", s.bookingService.Reject)
}

// handleCompleteBooking marks an accepted booking as completed
func (s *APIServer) handleCompleteBooking(c *gin.Context) {
	s.decideBooking(c, "Completed", s.bookingService.Complete)
}

func (s *APIServer) decideBooking(c *gin.Context, outcome string, action func(ctx context.Context, jobRequestID, callerAccountID uuid.UUID) error) {
	jobRequestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid job request id"))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	if err := action(c.Request.Context(), jobRequestID, accountID); err != nil {
		switch {
		case errors.Is(err, booking.ErrJobRequestNotFound):
			respondError(c, apierrors.NewNotFoundError("Job request"))
		case errors.Is(err, booking.ErrWorkerProfileRequired):
			respondError(c, apierrors.NewInvalidRequestError("Complete your worker profile first"))
		case errors.Is(err, booking.ErrNotAssignedWorker):
			respondError(c, apierrors.ErrUnauthorizedError)
		case errors.Is(err, booking.ErrInvalidTransition):
			respondError(c, apierrors.NewInvalidStateError("Job request is not in a state that allows this action"))
		default:
			logging.LogError(err, c.GetString("request_id"), "booking", "decide")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	logging.LogBookingEvent(c.GetString("request_id"), jobRequestID.String(), outcome)
	c.JSON(http.StatusOK, gin.H{})
}
