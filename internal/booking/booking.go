package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/hanapbuhay/backend/internal/monitoring"
	"github.com/hanapbuhay/backend/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service errors
var (
	ErrJobRequestNotFound    = errors.New("job request not found")
	ErrWorkerNotFound        = errors.New("worker not found")
	ErrClientProfileRequired = errors.New("caller has no client profile")
	ErrWorkerProfileRequired = errors.New("caller has no worker profile")
	ErrNotAssignedWorker     = errors.New("job request is not assigned to this worker")
	ErrInvalidTransition     = errors.New("transition not permitted from current status")
)

// transitions is the job request state machine. Pending forks to Accepted or
// Rejected; Rejected is terminal; review submission advances Accepted or
// Completed to Reviewed.
var transitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusPending:   {models.JobStatusAccepted, models.JobStatusRejected},
	models.JobStatusAccepted:  {models.JobStatusCompleted, models.JobStatusReviewed},
	models.JobStatusCompleted: {models.JobStatusReviewed},
	models.JobStatusRejected:  {},
	models.JobStatusReviewed:  {},
}

// CanTransition reports whether the state machine permits from -> to
func CanTransition(from, to models.JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Service owns the booking workflow and its coupled side effects
type Service struct {
	db       *pgxpool.Pool
	notifier *notify.Dispatcher
}

// NewService creates a new booking service
func NewService(db *pgxpool.Pool, notifier *notify.Dispatcher) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
	}
}

// CreateRequest inserts a Pending job request from the calling client to the
// given worker and notifies the worker, atomically.
func (s *Service) CreateRequest(ctx context.Context, callerAccountID, workerID uuid.UUID, serviceDetails string) (*models.JobRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientID uuid.UUID
	var clientFirst, clientLast string
	err = tx.QueryRow(ctx, `
		SELECT id, first_name, last_name FROM client_profiles WHERE account_id = $1
	`, callerAccountID).Scan(&clientID, &clientFirst, &clientLast)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientProfileRequired
		}
		return nil, fmt.Errorf("failed to resolve client profile: %w", err)
	}

	var workerAccountID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT account_id FROM worker_profiles WHERE id = $1
	`, workerID).Scan(&workerAccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to resolve worker: %w", err)
	}

	var job models.JobRequest
	err = tx.QueryRow(ctx, `
		INSERT INTO job_requests (client_id, worker_id, service_details)
		VALUES ($1, $2, $3)
		RETURNING id, client_id, worker_id, service_details, status, requested_at
	`, clientID, workerID, serviceDetails).Scan(
		&job.ID, &job.ClientID, &job.WorkerID, &job.ServiceDetails,
		&job.Status, &job.RequestedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job request: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID:  workerAccountID,
		JobRequestID: &job.ID,
		SenderID:     &callerAccountID,
		Title:        "New Booking Request",
		Body:         fmt.Sprintf("%s %s sent you a booking request", clientFirst, clientLast),
		Type:         models.NotificationTypeBooking,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	monitoring.Get().BookingsCreated.Inc()
	return &job, nil
}

// Accept transitions a pending request to Accepted. Atomically with the
// status flip it creates the conversation and notifies the client; two
// concurrent accept/reject calls leave exactly one winner and at most one
// conversation.
func (s *Service) Accept(ctx context.Context, jobRequestID, callerAccountID uuid.UUID) error {
	return s.decide(ctx, jobRequestID, callerAccountID, models.JobStatusAccepted)
}

// Reject transitions a pending request to Rejected and notifies the client.
// No conversation is created.
func (s *Service) Reject(ctx context.Context, jobRequestID, callerAccountID uuid.UUID) error {
	return s.decide(ctx, jobRequestID, callerAccountID, models.JobStatusRejected)
}

func (s *Service) decide(ctx context.Context, jobRequestID, callerAccountID uuid.UUID, decision models.JobStatus) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var workerID uuid.UUID
	var workerFirst, workerLast string
	err = tx.QueryRow(ctx, `
		SELECT id, first_name, last_name FROM worker_profiles WHERE account_id = $1
	`, callerAccountID).Scan(&workerID, &workerFirst, &workerLast)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkerProfileRequired
		}
		return fmt.Errorf("failed to resolve worker profile: %w", err)
	}

	var job models.JobRequest
	err = tx.QueryRow(ctx, `
		SELECT id, client_id, worker_id, service_details, status, requested_at
		FROM job_requests WHERE id = $1
	`, jobRequestID).Scan(
		&job.ID, &job.ClientID, &job.WorkerID, &job.ServiceDetails,
		&job.Status, &job.RequestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobRequestNotFound
		}
		return fmt.Errorf("failed to load job request: %w", err)
	}

	if job.WorkerID != workerID {
		return ErrNotAssignedWorker
	}

	// Conditional update is the concurrency guard: of two racing
	// accept/reject calls, exactly one sees a row change.
	tag, err := tx.Exec(ctx, `
		UPDATE job_requests SET status = $1 WHERE id = $2 AND status = $3
	`, decision, jobRequestID, models.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update job request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}

	title := "Booking Rejected"
	body := fmt.Sprintf("%s %s rejected your booking request", workerFirst, workerLast)
	if decision == models.JobStatusAccepted {
		title = "Booking Accepted"
		body = fmt.Sprintf("%s %s accepted your booking request", workerFirst, workerLast)

		_, err = tx.Exec(ctx, `
			INSERT INTO conversations (client_id, worker_id, job_request_id)
			VALUES ($1, $2, $3)
		`, job.ClientID, job.WorkerID, job.ID)
		if err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
	}

	var clientAccountID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT account_id FROM client_profiles WHERE id = $1
	`, job.ClientID).Scan(&clientAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve client account: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID:  clientAccountID,
		JobRequestID: &job.ID,
		SenderID:     &callerAccountID,
		Title:        title,
		Body:         body,
		Type:         models.NotificationTypeBooking,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if decision == models.JobStatusAccepted {
		monitoring.Get().BookingsAccepted.Inc()
	} else {
		monitoring.Get().BookingsRejected.Inc()
	}
	return nil
}

// Complete transitions an accepted request to Completed and increments the
// worker's completed-job counter in the same transaction.
func (s *Service) Complete(ctx context.Context, jobRequestID, callerAccountID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var workerID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM worker_profiles WHERE account_id = $1
	`, callerAccountID).Scan(&workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkerProfileRequired
		}
		return fmt.Errorf("failed to resolve worker profile: %w", err)
	}

	var job models.JobRequest
	err = tx.QueryRow(ctx, `
		SELECT id, client_id, worker_id, status FROM job_requests WHERE id = $1
	`, jobRequestID).Scan(&job.ID, &job.ClientID, &job.WorkerID, &job.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobRequestNotFound
		}
		return fmt.Errorf("failed to load job request: %w", err)
	}

	if job.WorkerID != workerID {
		return ErrNotAssignedWorker
	}

	tag, err := tx.Exec(ctx, `
		UPDATE job_requests SET status = $1 WHERE id = $2 AND status = $3
	`, models.JobStatusCompleted, jobRequestID, models.JobStatusAccepted)
	if err != nil {
		return fmt.Errorf("failed to update job request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}

	_, err = tx.Exec(ctx, `
		UPDATE worker_profiles SET completed_jobs = completed_jobs + 1 WHERE id = $1
	`, workerID)
	if err != nil {
		return fmt.Errorf("failed to increment completed jobs: %w", err)
	}

	var clientAccountID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT account_id FROM client_profiles WHERE id = $1
	`, job.ClientID).Scan(&clientAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve client account: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID:  clientAccountID,
		JobRequestID: &job.ID,
		SenderID:     &callerAccountID,
		Title:        "Job Completed",
		Body:         "Your booking was marked completed. You can now leave a review.",
		Type:         models.NotificationTypeBooking,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	monitoring.Get().BookingsCompleted.Inc()
	return nil
}

// PendingRequest is a pending job request with the requesting client's name
type PendingRequest struct {
	ID             uuid.UUID `json:"id"`
	ClientID       uuid.UUID `json:"client_id"`
	ClientName     string    `json:"client_name"`
	ServiceDetails string    `json:"service_details"`
	RequestedAt    time.Time `json:"requested_at"`
}

// ListPendingForWorker returns the calling worker's pending requests,
// newest first.
func (s *Service) ListPendingForWorker(ctx context.Context, callerAccountID uuid.UUID) ([]PendingRequest, error) {
	var workerID uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT id FROM worker_profiles WHERE account_id = $1
	`, callerAccountID).Scan(&workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkerProfileRequired
		}
		return nil, fmt.Errorf("failed to resolve worker profile: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT j.id, j.client_id, c.first_name || ' ' || c.last_name, j.service_details, j.requested_at
		FROM job_requests j
		JOIN client_profiles c ON c.id = j.client_id
		WHERE j.worker_id = $1 AND j.status = $2
		ORDER BY j.requested_at DESC
	`, workerID, models.JobStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	requests := make([]PendingRequest, 0)
	for rows.Next() {
		var r PendingRequest
		if err := rows.Scan(&r.ID, &r.ClientID, &r.ClientName, &r.ServiceDetails, &r.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// GetByID loads a job request
func (s *Service) GetByID(ctx context.Context, jobRequestID uuid.UUID) (*models.JobRequest, error) {
	var job models.JobRequest
	err := s.db.QueryRow(ctx, `
		SELECT id, client_id, worker_id, service_details, status, requested_at
		FROM job_requests WHERE id = $1
	`, jobRequestID).Scan(
		&job.ID, &job.ClientID, &job.WorkerID, &job.ServiceDetails,
		&job.Status, &job.RequestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobRequestNotFound
		}
		return nil, fmt.Errorf("failed to load job request: %w", err)
	}
	return &job, nil
}
