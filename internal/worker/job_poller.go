package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
)

// JobChange is one difference between two reads of the jobs table.
type JobChange struct {
	Job      domain.Job
	Previous domain.JobStatus
	Created  bool
}

// ChangeHandler receives the changes found by one poll.
type ChangeHandler func(ctx context.Context, changes []JobChange)

// JobPoller periodically re-reads the jobs table and reports what changed
// since the previous read. The first read only primes the snapshot.
type JobPoller struct {
	store    *persistence.Store
	filter   repository.JobFilter
	interval time.Duration
	logger   *zap.Logger
	onChange ChangeHandler

	mu       sync.Mutex
	snapshot map[string]domain.JobStatus
	primed   bool
}

// NewJobPoller builds a poller limited to jobs matching filter.
func NewJobPoller(store *persistence.Store, filter repository.JobFilter, interval time.Duration, logger *zap.Logger, onChange ChangeHandler) *JobPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobPoller{
		store:    store,
		filter:   filter,
		interval: interval,
		logger:   logger,
		onChange: onChange,
		snapshot: make(map[string]domain.JobStatus),
	}
}

// Poll reads the table once and returns changes since the last call.
func (p *JobPoller) Poll(ctx context.Context) ([]JobChange, error) {
	jobs, err := p.store.Jobs(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var changes []JobChange
	next := make(map[string]domain.JobStatus, len(jobs))
	for _, job := range jobs {
		if !p.filter.Matches(job) {
			continue
		}
		next[job.ID] = job.Status
		if !p.primed {
			continue
		}
		prev, known := p.snapshot[job.ID]
		switch {
		case !known:
			changes = append(changes, JobChange{Job: job, Created: true})
		case prev != job.Status:
			changes = append(changes, JobChange{Job: job, Previous: prev})
		}
	}
	p.snapshot = next
	p.primed = true
	return changes, nil
}

// Run polls on every tick until ctx is done.
func (p *JobPoller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("job poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *JobPoller) tick(ctx context.Context) {
	changes, err := p.Poll(ctx)
	if err != nil {
		p.logger.Warn("job poll failed", zap.Error(err))
		return
	}
	if len(changes) > 0 && p.onChange != nil {
		p.onChange(ctx, changes)
	}
}

// EventPublisher turns observed changes into actor-less domain events.
func EventPublisher(dispatcher events.Dispatcher, logger *zap.Logger) ChangeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, changes []JobChange) {
		for _, c := range changes {
			var event events.Event
			if c.Created {
				event = events.New(events.EventJobCreated, c.Job.ID, events.Actor{}, events.JobParties(c.Job),
					events.JobCreatedPayload{SeekerName: c.Job.SeekerName, WorkerName: c.Job.WorkerName, Category: c.Job.Category, Price: c.Job.Price})
			} else {
				payload := events.JobStatusChangedPayload{OldStatus: c.Previous, NewStatus: c.Job.Status}
				if ev, err := domain.EventFor(c.Previous, c.Job.Status); err == nil {
					payload.Event = ev
				}
				event = events.New(events.EventJobStatusChanged, c.Job.ID, events.Actor{}, events.JobParties(c.Job), payload)
			}
			if err := dispatcher.Publish(ctx, event); err != nil {
				logger.Warn("observed change handlers failed", zap.String("job_id", c.Job.ID), zap.Error(err))
			}
		}
	}
}
