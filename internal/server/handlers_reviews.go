package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/rating"
)

// SubmitReviewRequest is the payload for submitting a review
type SubmitReviewRequest struct {
	JobRequestID uuid.UUID `json:"jobRequestId" binding:"required"`
	Rating       int       `json:"rating" binding:"required,min=1,max=5"`
	ReviewText   string    `json:"reviewText"`
}

// handleSubmitReview records the calling client's review for a job request
func (s *APIServer) handleSubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	_, err := s.ratingService.RecordReview(c.Request.Context(), req.JobRequestID, accountID, req.Rating, req.ReviewText)
	if err != nil {
		switch {
		case errors.Is(err, rating.ErrJobRequestNotFound):
			respondError(c, apierrors.NewNotFoundError("Job request"))
		case errors.Is(err, rating.ErrClientProfileRequired):
			respondError(c, apierrors.NewInvalidRequestError("Complete your client profile first"))
		case errors.Is(err, rating.ErrNotRequestingClient):
			respondError(c, apierrors.ErrUnauthorizedError)
		case errors.Is(err, rating.ErrInvalidRating):
			respondError(c, apierrors.NewValidationError("Rating must be between 1 and 5"))
		case errors.Is(err, rating.ErrNotReviewable):
			respondError(c, apierrors.NewInvalidStateError("Job request cannot be reviewed in its current status"))
		case errors.Is(err, rating.ErrDuplicateReview):
			respondError(c, apierrors.NewConflictError("Job request already has a review"))
		default:
			logging.LogError(err, c.GetString("request_id"), "rating", "submit_review")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{})
}
