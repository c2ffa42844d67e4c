package rating

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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrJobRequestNotFound    = errors.New("job request not found")
	ErrClientProfileRequired = errors.New("caller has no client profile")
	ErrNotRequestingClient   = errors.New("job request does not belong to this client")
	ErrNotReviewable         = errors.New("job request cannot be reviewed in its current status")
	ErrDuplicateReview       = errors.New("job request already has a review")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrWorkerNotFound        = errors.New("worker not found")
)

// Service records reviews and maintains per-worker rating aggregates
type Service struct {
	db       *pgxpool.Pool
	notifier *notify.Dispatcher
}

// NewService creates a new rating service
func NewService(db *pgxpool.Pool, notifier *notify.Dispatcher) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
	}
}

// RecordReview writes the client's review for a job request. In one
// transaction it inserts the review, flips the request to Reviewed, and
// recomputes the worker's average rating. The review is inserted first so
// that any second submission, sequential or racing, dies on the unique
// index over reviews.job_request_id rather than on the status guard.
func (s *Service) RecordReview(ctx context.Context, jobRequestID, callerAccountID uuid.UUID, stars int, reviewText string) (*models.Review, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM client_profiles WHERE account_id = $1
	`, callerAccountID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientProfileRequired
		}
		return nil, fmt.Errorf("failed to resolve client profile: %w", err)
	}

	var job models.JobRequest
	err = tx.QueryRow(ctx, `
		SELECT id, client_id, worker_id, status FROM job_requests WHERE id = $1
	`, jobRequestID).Scan(&job.ID, &job.ClientID, &job.WorkerID, &job.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobRequestNotFound
		}
		return nil, fmt.Errorf("failed to load job request: %w", err)
	}

	if job.ClientID != clientID {
		return nil, ErrNotRequestingClient
	}

	var review models.Review
	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (job_request_id, worker_id, client_id, rating, review_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, job_request_id, worker_id, client_id, rating, review_text, created_at
	`, jobRequestID, job.WorkerID, clientID, stars, reviewText).Scan(
		&review.ID, &review.JobRequestID, &review.WorkerID, &review.ClientID,
		&review.Rating, &review.ReviewText, &review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	// If the request is not reviewable the rollback discards the insert
	tag, err := tx.Exec(ctx, `
		UPDATE job_requests SET status = $1
		WHERE id = $2 AND status IN ($3, $4)
	`, models.JobStatusReviewed, jobRequestID, models.JobStatusAccepted, models.JobStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to update job request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotReviewable
	}

	average, err := s.recomputeAverage(ctx, tx, job.WorkerID)
	if err != nil {
		return nil, err
	}

	var workerAccountID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT account_id FROM worker_profiles WHERE id = $1
	`, job.WorkerID).Scan(&workerAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worker account: %w", err)
	}

	err = s.notifier.Notify(ctx, tx, notify.Params{
		RecipientID:  workerAccountID,
		JobRequestID: &job.ID,
		SenderID:     &callerAccountID,
		Title:        "New Review",
		Body:         fmt.Sprintf("You received a %d-star review. Your rating is now %s.", stars, average.StringFixed(2)),
		Type:         models.NotificationTypeReview,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	monitoring.Get().ReviewsSubmitted.Inc()
	return &review, nil
}

// recomputeAverage recalculates the worker's mean rating from all stored
// reviews and persists it, rounded to two decimal places.
func (s *Service) recomputeAverage(ctx context.Context, tx pgx.Tx, workerID uuid.UUID) (decimal.Decimal, error) {
	rows, err := tx.Query(ctx, `
		SELECT rating FROM reviews WHERE worker_id = $1
	`, workerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load worker ratings: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	count := int64(0)
	for rows.Next() {
		var stars int64
		if err := rows.Scan(&stars); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan rating: %w", err)
		}
		sum = sum.Add(decimal.NewFromInt(stars))
		count++
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}

	average := decimal.Zero
	if count > 0 {
		average = sum.DivRound(decimal.NewFromInt(count), 2)
	}

	_, err = tx.Exec(ctx, `
		UPDATE worker_profiles SET average_rating = $1 WHERE id = $2
	`, average, workerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update average rating: %w", err)
	}

	return average, nil
}

// WorkerReview is a review as shown on a worker's public listing
type WorkerReview struct {
	ID         uuid.UUID `json:"id"`
	ClientName string    `json:"client_name"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListForWorker returns a worker's reviews, newest first, with the
// worker's current aggregate.
func (s *Service) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]WorkerReview, decimal.Decimal, error) {
	var average decimal.Decimal
	err := s.db.QueryRow(ctx, `
		SELECT average_rating FROM worker_profiles WHERE id = $1
	`, workerID).Scan(&average)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decimal.Zero, ErrWorkerNotFound
		}
		return nil, decimal.Zero, fmt.Errorf("failed to load worker: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.id, c.first_name || ' ' || c.last_name, r.rating, r.review_text, r.created_at
		FROM reviews r
		JOIN client_profiles c ON c.id = r.client_id
		WHERE r.worker_id = $1
		ORDER BY r.created_at DESC
	`, workerID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]WorkerReview, 0)
	for rows.Next() {
		var r WorkerReview
		if err := rows.Scan(&r.ID, &r.ClientName, &r.Rating, &r.ReviewText, &r.CreatedAt); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	return reviews, average, rows.Err()
}
