package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/hanapbuhay/backend/internal/report"
)

// CreateReportRequest is the payload for filing a moderation report
type CreateReportRequest struct {
	ReportedWorkerID *uuid.UUID `json:"reportedWorkerId,omitempty"`
	Reason           string     `json:"reason" binding:"required"`
	ContentType      string     `json:"contentType"`
	Description      string     `json:"description"`
}

// handleCreateReport files a moderation report
func (s *APIServer) handleCreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	created, err := s.reportService.Create(c.Request.Context(), report.CreateParams{
		ReporterID:       accountID,
		ReportedWorkerID: req.ReportedWorkerID,
		Reason:           req.Reason,
		ContentType:      req.ContentType,
		Description:      req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, report.ErrWorkerNotFound):
			respondError(c, apierrors.NewNotFoundError("Worker"))
		case errors.Is(err, report.ErrEmptyReason):
			respondError(c, apierrors.NewValidationError("Report reason must not be empty"))
		default:
			logging.LogError(err, c.GetString("request_id"), "report", "create")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// handleAdminListReports lists reports for moderation. ?status filters by
// moderation status.
func (s *APIServer) handleAdminListReports(c *gin.Context) {
	status := models.ReportStatus(c.Query("status"))
	switch status {
	case "", models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		respondError(c, apierrors.NewInvalidRequestError("Invalid report status filter"))
		return
	}

	reports, err := s.reportService.List(c.Request.Context(), status)
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "report", "list")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ReportDecisionRequest carries the admin's notes for a report decision
type ReportDecisionRequest struct {
	Notes string `json:"notes"`
}

// handleAdminResolveReport closes a pending report as resolved
func (s *APIServer) handleAdminResolveReport(c *gin.Context) {
	s.decideReport(c, s.reportService.Resolve)
}

// handleAdminDismissReport closes a pending report as dismissed
func (s *APIServer) handleAdminDismissReport(c *gin.Context) {
	s.decideReport(c, s.reportService.Dismiss)
}

func (s *APIServer) decideReport(c *gin.Context, action func(ctx context.Context, reportID, adminAccountID uuid.UUID, notes string) error) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid report id"))
		return
	}

	var req ReportDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	accountID := middleware.GetAccountIDFromContext(c)
	if err := action(c.Request.Context(), reportID, accountID, req.Notes); err != nil {
		switch {
		case errors.Is(err, report.ErrReportNotFound):
			respondError(c, apierrors.NewNotFoundError("Report"))
		case errors.Is(err, report.ErrAlreadyDecided):
			respondError(c, apierrors.NewInvalidStateError("Report has already been resolved or dismissed"))
		default:
			logging.LogError(err, c.GetString("request_id"), "report", "decide")
			respondError(c, apierrors.ErrPersistenceError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
