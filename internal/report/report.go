package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/hanapbuhay/backend/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service errors
var (
	ErrReportNotFound = errors.New("report not found")
	ErrAlreadyDecided = errors.New("report has already been resolved or dismissed")
	ErrWorkerNotFound = errors.New("reported worker not found")
	ErrEmptyReason    = errors.New("report reason must not be empty")
)

// Service manages moderation reports
type Service struct {
	db       *pgxpool.Pool
	notifier *notify.Dispatcher
}

// NewService creates a new report service
func NewService(db *pgxpool.Pool, notifier *notify.Dispatcher) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
	}
}

// CreateParams describes a new report
type CreateParams struct {
	ReporterID       uuid.UUID
	ReportedWorkerID *uuid.UUID
	Reason           string
	ContentType      string
	Description      string
}

// Create files a moderation report
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Report, error) {
	if p.Reason == "" {
		return nil, ErrEmptyReason
	}

	if p.ReportedWorkerID != nil {
		var exists bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM worker_profiles WHERE id = $1)
		`, *p.ReportedWorkerID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check reported worker: %w", err)
		}
		if !exists {
			return nil, ErrWorkerNotFound
		}
	}

	var r models.Report
	err := s.db.QueryRow(ctx, `
		INSERT INTO reports (reporter_id, reported_worker_id, reason, content_type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, reporter_id, reported_worker_id, reason, content_type, description,
		          status, admin_notes, created_at, updated_at
	`, p.ReporterID, p.ReportedWorkerID, p.Reason, p.ContentType, p.Description).Scan(
		&r.ID, &r.ReporterID, &r.ReportedWorkerID, &r.Reason, &r.ContentType,
		&r.Description, &r.Status, &r.AdminNotes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &r, nil
}

// List returns reports, newest first, optionally filtered by status
func (s *Service) List(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, reporter_id, reported_worker_id, reason, content_type, description,
		       status, admin_notes, created_at, updated_at
		FROM reports
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		var r models.Report
		err := rows.Scan(
			&r.ID, &r.ReporterID, &r.ReportedWorkerID, &r.Reason, &r.ContentType,
			&r.Description, &r.Status, &r.AdminNotes, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// Resolve closes a pending report as resolved and records the admin's notes.
// The reporter is notified of the outcome.
func (s *Service) Resolve(ctx context.Context, reportID, adminAccountID uuid.UUID, notes string) error {
	return s.decide(ctx, reportID, adminAccountID, models.ReportStatusResolved, notes)
}

// Dismiss closes a pending report as dismissed
func (s *Service) Dismiss(ctx context.Context, reportID, adminAccountID uuid.UUID, notes string) error {
	return s.decide(ctx, reportID, adminAccountID, models.ReportStatusDismissed, notes)
}

func (s *Service) decide(ctx context.Context, reportID, adminAccountID uuid.UUID, decision models.ReportStatus, notes string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reporterID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE reports
		SET status = $1, admin_notes = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING reporter_id
	`, decision, notes, reportID, models.ReportStatusPending).Scan(&reporterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if checkErr := tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)
			`, reportID).Scan(&exists); checkErr != nil {
				return fmt.Errorf("failed to check report: %w", checkErr)
			}
			if exists {
				return ErrAlreadyDecided
			}
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to update report: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID: reporterID,
		SenderID:    &adminAccountID,
		Title:       "Report " + string(decision),
		Body:        fmt.Sprintf("Your report has been %s by a moderator.", string(decision)),
		Type:        models.NotificationTypeSystem,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
