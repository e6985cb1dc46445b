package repository

import (
	"context"
	"errors"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/persistence"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("repository: record not found")

// JobFilter captures listing parameters. Zero fields do not filter.
type JobFilter struct {
	SeekerID string
	WorkerID string
	Statuses []domain.JobStatus
}

// Matches reports whether job passes every set criterion.
func (f JobFilter) Matches(job domain.Job) bool {
	if f.SeekerID != "" && job.SeekerID != f.SeekerID {
		return false
	}
	if f.WorkerID != "" && job.WorkerID != f.WorkerID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if job.Status == s {
			return true
		}
	}
	return false
}

// JobRepository encapsulates job reads.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	ListWithFilter(ctx context.Context, filter JobFilter) ([]domain.Job, error)
}

type jobRepository struct {
	store *persistence.Store
}

// NewJobRepository instantiates repository.
func NewJobRepository(store *persistence.Store) JobRepository {
	return &jobRepository{store: store}
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	jobs, err := r.store.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListWithFilter returns matching jobs in insertion order.
func (r *jobRepository) ListWithFilter(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	jobs, err := r.store.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Matches(job) {
			result = append(result, job)
		}
	}
	return result, nil
}
