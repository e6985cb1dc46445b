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

// JobService coordinates hiring and the worker-side job transitions.
type JobService struct {
	store      *persistence.Store
	jobs       repository.JobRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// JobDependencies bundles collaborators for job service.
type JobDependencies struct {
	Store      *persistence.Store
	JobRepo    repository.JobRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CreateJobInput describes a hire request.
type CreateJobInput struct {
	WorkerID    string
	Description string
}

// WorkerDashboard groups a worker's jobs by stage.
type WorkerDashboard struct {
	Pending []domain.Job `json:"pending"`
	Active  []domain.Job `json:"active"`
	History []domain.Job `json:"history"`
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		store:      deps.Store,
		jobs:       deps.JobRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateJob hires a worker for the calling seeker. Category, price and names
// are copied from the records at hire time.
func (s *JobService) CreateJob(ctx context.Context, session domain.Session, input CreateJobInput) (*domain.Job, error) {
	if session.Role != domain.RoleSeeker {
		return nil, apperrors.NewForbidden("only seekers can hire workers")
	}
	workerID := strings.TrimSpace(input.WorkerID)
	if workerID == "" {
		return nil, apperrors.NewValidationError("worker id is required", nil)
	}

	var created domain.Job
	err := s.store.Update(ctx, func(t *persistence.Tables) error {
		worker := t.User(workerID)
		if worker == nil || !worker.IsWorker() {
			return apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		if !worker.IsAvailable {
			return apperrors.NewConflict("worker is not available", map[string]any{"worker_id": workerID})
		}
		seeker := t.User(session.UserID)
		if seeker == nil {
			return apperrors.NewNotFound("seeker", map[string]any{"seeker_id": session.UserID})
		}

		description := strings.TrimSpace(input.Description)
		if description == "" {
			description = fmt.Sprintf("Service required for %s", worker.Category)
		}
		created = domain.Job{
			ID:          uuid.NewString(),
			SeekerID:    seeker.ID,
			SeekerName:  seeker.Name,
			WorkerID:    worker.ID,
			WorkerName:  worker.Name,
			Category:    worker.Category,
			Description: description,
			Price:       worker.HourlyRate,
			Status:      domain.JobStatusPending,
			CreatedAt:   s.now(),
		}
		t.Jobs = append(t.Jobs, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job created",
		zap.String("job_id", created.ID),
		zap.String("seeker_id", created.SeekerID),
		zap.String("worker_id", created.WorkerID),
		zap.Int64("price", created.Price))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventJobCreated, created.ID, events.ActorFor(session), events.JobParties(created),
		events.JobCreatedPayload{SeekerName: created.SeekerName, WorkerName: created.WorkerName, Category: created.Category, Price: created.Price}))
	return &created, nil
}

// AcceptJob moves a pending job into progress.
func (s *JobService) AcceptJob(ctx context.Context, session domain.Session, jobID string) (*domain.Job, error) {
	return s.transition(ctx, session, jobID, fixedEvent(domain.JobEventAccept))
}

// DeclineJob cancels a pending job.
func (s *JobService) DeclineJob(ctx context.Context, session domain.Session, jobID string) (*domain.Job, error) {
	return s.transition(ctx, session, jobID, fixedEvent(domain.JobEventDecline))
}

// CompleteJob marks in-progress work as done.
func (s *JobService) CompleteJob(ctx context.Context, session domain.Session, jobID string) (*domain.Job, error) {
	return s.transition(ctx, session, jobID, fixedEvent(domain.JobEventComplete))
}

// UpdateJobStatus applies the event implied by moving to newStatus. Payment
// is only reachable through settlement.
func (s *JobService) UpdateJobStatus(ctx context.Context, session domain.Session, jobID string, newStatus domain.JobStatus) (*domain.Job, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	return s.transition(ctx, session, jobID, func(job domain.Job) (domain.JobEvent, error) {
		event, err := domain.EventFor(job.Status, newStatus)
		if err != nil {
			return "", err
		}
		if event == domain.JobEventSettle {
			return "", apperrors.NewInvalidTransition("jobs are paid through settlement", map[string]any{
				"job_id": job.ID,
				"from":   job.Status,
				"to":     newStatus,
			})
		}
		return event, nil
	})
}

func fixedEvent(event domain.JobEvent) func(domain.Job) (domain.JobEvent, error) {
	return func(domain.Job) (domain.JobEvent, error) { return event, nil }
}

func (s *JobService) transition(ctx context.Context, session domain.Session, jobID string, resolve func(domain.Job) (domain.JobEvent, error)) (*domain.Job, error) {
	var (
		updated domain.Job
		from    domain.JobStatus
		event   domain.JobEvent
	)
	err := s.store.Update(ctx, func(t *persistence.Tables) error {
		job := t.Job(jobID)
		if job == nil {
			return apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		ev, err := resolve(*job)
		if err != nil {
			return err
		}
		if err := authorizeEvent(session, *job, ev); err != nil {
			return err
		}
		next, err := domain.NextStatus(job.Status, ev)
		if err != nil {
			return err
		}

		from, event = job.Status, ev
		job.Status = next
		job.UpdatedAt = s.now()
		updated = *job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job status changed",
		zap.String("job_id", updated.ID),
		zap.String("event", string(event)),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventJobStatusChanged, updated.ID, events.ActorFor(session), events.JobParties(updated),
		events.JobStatusChangedPayload{OldStatus: from, NewStatus: updated.Status, Event: event}))
	return &updated, nil
}

// authorizeEvent checks that session is the party allowed to fire event.
func authorizeEvent(session domain.Session, job domain.Job, event domain.JobEvent) error {
	actor := event.Actor()
	party := job.WorkerID
	if actor == domain.RoleSeeker {
		party = job.SeekerID
	}
	if session.Role != actor || session.UserID != party {
		return apperrors.NewForbidden(fmt.Sprintf("only the job's %s may %s it", strings.ToLower(string(actor)), event))
	}
	return nil
}

// GetJob returns a job visible to one of its parties.
func (s *JobService) GetJob(ctx context.Context, session domain.Session, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, translateNotFound(err, "job", "job_id", jobID)
	}
	if job.SeekerID != session.UserID && job.WorkerID != session.UserID {
		return nil, apperrors.NewForbidden("not a party to this job")
	}
	return job, nil
}

// ListJobs is an unscoped filtered scan.
func (s *JobService) ListJobs(ctx context.Context, filter repository.JobFilter) ([]domain.Job, error) {
	return s.jobs.ListWithFilter(ctx, filter)
}

// SeekerActiveJobs lists the seeker's jobs that are not yet paid or cancelled.
func (s *JobService) SeekerActiveJobs(ctx context.Context, session domain.Session) ([]domain.Job, error) {
	if session.Role != domain.RoleSeeker {
		return nil, apperrors.NewForbidden("seeker role required")
	}
	return s.jobs.ListWithFilter(ctx, repository.JobFilter{
		SeekerID: session.UserID,
		Statuses: []domain.JobStatus{domain.JobStatusPending, domain.JobStatusInProgress, domain.JobStatusCompleted},
	})
}

// WorkerDashboard buckets the worker's jobs into pending, active and history.
func (s *JobService) WorkerDashboard(ctx context.Context, session domain.Session) (*WorkerDashboard, error) {
	if session.Role != domain.RoleWorker {
		return nil, apperrors.NewForbidden("worker role required")
	}
	jobs, err := s.jobs.ListWithFilter(ctx, repository.JobFilter{WorkerID: session.UserID})
	if err != nil {
		return nil, err
	}

	dash := &WorkerDashboard{Pending: []domain.Job{}, Active: []domain.Job{}, History: []domain.Job{}}
	for _, job := range jobs {
		switch job.Status {
		case domain.JobStatusPending:
			dash.Pending = append(dash.Pending, job)
		case domain.JobStatusInProgress:
			dash.Active = append(dash.Active, job)
		case domain.JobStatusCompleted, domain.JobStatusPaidAndReviewed:
			dash.History = append(dash.History, job)
		}
	}
	return dash, nil
}

// AvailableWorkers lists available workers, optionally in one category.
// An empty category or "All" disables the category filter.
func (s *JobService) AvailableWorkers(ctx context.Context, category string) ([]domain.User, error) {
	category = strings.TrimSpace(category)
	if category != "" && category != domain.CategoryAll && !domain.IsCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	workers, err := s.users.ListWorkers(ctx, repository.WorkerFilter{Category: category, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	for i := range workers {
		workers[i] = workers[i].Public()
	}
	return workers, nil
}

// SetAvailability sets the calling worker's availability flag.
func (s *JobService) SetAvailability(ctx context.Context, session domain.Session, available bool) (*domain.User, error) {
	return s.updateAvailability(ctx, session, func(bool) bool { return available })
}

// ToggleAvailability flips the calling worker's availability flag.
func (s *JobService) ToggleAvailability(ctx context.Context, session domain.Session) (*domain.User, error) {
	return s.updateAvailability(ctx, session, func(current bool) bool { return !current })
}

func (s *JobService) updateAvailability(ctx context.Context, session domain.Session, next func(bool) bool) (*domain.User, error) {
	if session.Role != domain.RoleWorker {
		return nil, apperrors.NewForbidden("worker role required")
	}

	var (
		updated domain.User
		changed bool
	)
	err := s.store.Update(ctx, func(t *persistence.Tables) error {
		worker := t.User(session.UserID)
		if worker == nil || !worker.IsWorker() {
			return apperrors.NewNotFound("worker", map[string]any{"worker_id": session.UserID})
		}
		value := next(worker.IsAvailable)
		changed = value != worker.IsAvailable
		worker.IsAvailable = value
		updated = worker.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("worker availability changed", zap.String("worker_id", updated.ID), zap.Bool("available", updated.IsAvailable))
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventWorkerAvailabilityChanged, "", events.ActorFor(session), []string{updated.ID},
			events.WorkerAvailabilityChangedPayload{IsAvailable: updated.IsAvailable}))
	}
	return &updated, nil
}
