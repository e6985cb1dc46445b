package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// SettlementService pays for completed jobs and records the seeker's review.
type SettlementService struct {
	store      *persistence.Store
	ledger     repository.LedgerRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SettlementDependencies bundles collaborators for settlement.
type SettlementDependencies struct {
	Store      *persistence.Store
	LedgerRepo repository.LedgerRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SettlementResult describes a committed settlement.
type SettlementResult struct {
	Job     domain.Job           `json:"job"`
	Review  domain.Review        `json:"review"`
	Seeker  domain.User          `json:"seeker"`
	Worker  domain.User          `json:"worker"`
	Entries []domain.LedgerEntry `json:"entries"`
}

// NewSettlementService constructs the service.
func NewSettlementService(deps SettlementDependencies) *SettlementService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		store:      deps.Store,
		ledger:     deps.LedgerRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Settle moves job.Price from seeker to worker, appends the review and marks
// the job paid, all in one atomic update. If either party is missing nothing
// is applied.
func (s *SettlementService) Settle(ctx context.Context, session domain.Session, jobID string, rating int, comment string) (*SettlementResult, error) {
	if !domain.ValidReviewRating(rating) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("rating must be between %d and %d", domain.MinReviewRating, domain.MaxReviewRating),
			map[string]any{"rating": rating},
		)
	}
	comment = strings.TrimSpace(comment)

	var result SettlementResult
	err := s.store.Update(ctx, func(t *persistence.Tables) error {
		job := t.Job(jobID)
		if job == nil {
			return apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		if err := authorizeEvent(session, *job, domain.JobEventSettle); err != nil {
			return err
		}
		next, err := domain.NextStatus(job.Status, domain.JobEventSettle)
		if err != nil {
			return err
		}

		worker := t.User(job.WorkerID)
		if worker == nil {
			return apperrors.NewNotFound("worker", map[string]any{"worker_id": job.WorkerID, "job_id": job.ID})
		}
		seeker := t.User(job.SeekerID)
		if seeker == nil {
			return apperrors.NewNotFound("seeker", map[string]any{"seeker_id": job.SeekerID, "job_id": job.ID})
		}

		now := s.now()
		review := domain.Review{
			ID:           uuid.NewString(),
			ReviewerName: seeker.Name,
			Rating:       rating,
			Comment:      comment,
			Date:         now,
		}
		worker.AddReview(review)

		seeker.Balance -= job.Price
		worker.Balance += job.Price

		job.Status = next
		job.UpdatedAt = now

		entries := []domain.LedgerEntry{
			{
				ID:          uuid.NewString(),
				UserID:      seeker.ID,
				JobID:       job.ID,
				Amount:      job.Price,
				Type:        domain.LedgerDebit,
				Description: fmt.Sprintf("Payment to %s for %s", worker.Name, job.Category),
				CreatedAt:   now,
			},
			{
				ID:          uuid.NewString(),
				UserID:      worker.ID,
				JobID:       job.ID,
				Amount:      job.Price,
				Type:        domain.LedgerCredit,
				Description: fmt.Sprintf("Payment from %s for %s", seeker.Name, job.Category),
				CreatedAt:   now,
			},
		}
		t.Ledger = append(t.Ledger, entries...)

		result = SettlementResult{
			Job:     *job,
			Review:  review,
			Seeker:  seeker.Public(),
			Worker:  worker.Public(),
			Entries: entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job settled",
		zap.String("job_id", result.Job.ID),
		zap.Int64("amount", result.Job.Price),
		zap.Int("rating", rating),
		zap.Float64("worker_rating", result.Worker.Rating))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventJobSettled, result.Job.ID, events.ActorFor(session), events.JobParties(result.Job),
		events.JobSettledPayload{
			Amount:          result.Job.Price,
			Rating:          rating,
			WorkerRating:    result.Worker.Rating,
			WorkerReviews:   result.Worker.ReviewCount,
			SeekerBalance:   result.Seeker.Balance,
			WorkerBalance:   result.Worker.Balance,
			ReviewerComment: comment,
		}))
	return &result, nil
}

// Ledger returns the caller's balance movements.
func (s *SettlementService) Ledger(ctx context.Context, session domain.Session) ([]domain.LedgerEntry, error) {
	return s.ledger.ListByUser(ctx, session.UserID)
}
