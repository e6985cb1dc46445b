package worker

import (
	"context"
	"testing"
	"time"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
)

func newStore(t *testing.T) *persistence.Store {
	t.Helper()
	store := persistence.NewStore(persistence.NewMemoryBackend(), nil)
	if err := store.EnsureSeeded(context.Background(), nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func setJobs(t *testing.T, store *persistence.Store, jobs ...domain.Job) {
	t.Helper()
	if err := store.SaveJobs(context.Background(), jobs); err != nil {
		t.Fatalf("save jobs: %v", err)
	}
}

func TestPollerDiffsSnapshots(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	poller := NewJobPoller(store, repository.JobFilter{}, time.Second, nil, nil)

	j1 := domain.Job{ID: "j1", SeekerID: "s1", WorkerID: "w1", Status: domain.JobStatusPending}
	setJobs(t, store, j1)

	changes, err := poller.Poll(ctx)
	if err != nil || len(changes) != 0 {
		t.Fatalf("priming poll should report nothing, got %v (%v)", changes, err)
	}

	j1.Status = domain.JobStatusInProgress
	j2 := domain.Job{ID: "j2", SeekerID: "s1", WorkerID: "w2", Status: domain.JobStatusPending}
	setJobs(t, store, j1, j2)

	changes, err = poller.Poll(ctx)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if changes[0].Job.ID != "j1" || changes[0].Previous != domain.JobStatusPending || changes[0].Created {
		t.Fatalf("unexpected status change %+v", changes[0])
	}
	if changes[1].Job.ID != "j2" || !changes[1].Created {
		t.Fatalf("unexpected creation %+v", changes[1])
	}

	if changes, _ := poller.Poll(ctx); len(changes) != 0 {
		t.Fatalf("unchanged table reported changes: %+v", changes)
	}
}

func TestPollerRespectsFilter(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	poller := NewJobPoller(store, repository.JobFilter{WorkerID: "w1"}, time.Second, nil, nil)
	_, _ = poller.Poll(ctx)

	setJobs(t, store,
		domain.Job{ID: "j1", WorkerID: "w1", Status: domain.JobStatusPending},
		domain.Job{ID: "j2", WorkerID: "w2", Status: domain.JobStatusPending},
	)
	changes, _ := poller.Poll(ctx)
	if len(changes) != 1 || changes[0].Job.ID != "j1" {
		t.Fatalf("expected only w1's job, got %+v", changes)
	}
}

func TestEventPublisherEmitsActorlessEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	for _, et := range events.AllTypes() {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			got = append(got, e)
			return nil
		})
	}

	publish := EventPublisher(dispatcher, nil)
	publish(context.Background(), []JobChange{
		{Job: domain.Job{ID: "j1", SeekerID: "s1", WorkerID: "w1", Status: domain.JobStatusPending}, Created: true},
		{Job: domain.Job{ID: "j1", SeekerID: "s1", WorkerID: "w1", Status: domain.JobStatusInProgress}, Previous: domain.JobStatusPending},
	})

	if len(got) != 2 || got[0].Type != events.EventJobCreated || got[1].Type != events.EventJobStatusChanged {
		t.Fatalf("unexpected events %+v", got)
	}
	payload, ok := got[1].Payload.(events.JobStatusChangedPayload)
	if !ok || payload.Event != domain.JobEventAccept {
		t.Fatalf("expected inferred accept event, got %+v", got[1].Payload)
	}
	if got[1].Actor.UserID != "" {
		t.Fatalf("observed events must not claim an actor")
	}
}
