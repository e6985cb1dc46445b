package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/mq"
)

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakeBroker struct {
	mu   sync.Mutex
	sent []published
}

func (b *fakeBroker) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, published{channel: channel, data: data, attrs: attrs})
	return "id", nil
}

func (b *fakeBroker) Subscribe(context.Context, string, mq.Handler) error { return nil }

func (b *fakeBroker) Close() error { return nil }

func TestNotificationsFanOutToParties(t *testing.T) {
	broker := &fakeBroker{}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, mq.New(broker)).RegisterHandlers()

	job := domain.Job{ID: "j1", SeekerID: "s1", WorkerID: "w1"}
	event := events.New(events.EventJobCreated, job.ID, events.Actor{UserID: "s1", Role: domain.RoleSeeker}, events.JobParties(job), nil)
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(broker.sent) != 2 {
		t.Fatalf("expected two forwards, got %d", len(broker.sent))
	}
	if broker.sent[0].channel != "notifications:s1" || broker.sent[1].channel != "notifications:w1" {
		t.Fatalf("unexpected channels %q %q", broker.sent[0].channel, broker.sent[1].channel)
	}
	if broker.sent[0].attrs["type"] != string(events.EventJobCreated) {
		t.Fatalf("missing type attribute")
	}
	var decoded events.Event
	if err := json.Unmarshal(broker.sent[0].data, &decoded); err != nil || decoded.ID != event.ID {
		t.Fatalf("forwarded body not the event: %v", err)
	}
}

func TestNotificationsSkipObservedDuplicates(t *testing.T) {
	broker := &fakeBroker{}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, mq.New(broker)).RegisterHandlers()
	ctx := context.Background()

	parties := []string{"s1", "w1"}
	change := events.JobStatusChangedPayload{OldStatus: domain.JobStatusPending, NewStatus: domain.JobStatusInProgress}
	direct := events.New(events.EventJobStatusChanged, "j1", events.Actor{UserID: "w1", Role: domain.RoleWorker}, parties, change)
	observed := events.New(events.EventJobStatusChanged, "j1", events.Actor{}, parties, change)

	_ = dispatcher.Publish(ctx, direct)
	_ = dispatcher.Publish(ctx, observed)
	if len(broker.sent) != 2 {
		t.Fatalf("observed duplicate was forwarded: %d sends", len(broker.sent))
	}

	next := events.New(events.EventJobStatusChanged, "j1", events.Actor{}, parties,
		events.JobStatusChangedPayload{OldStatus: domain.JobStatusInProgress, NewStatus: domain.JobStatusCompleted})
	_ = dispatcher.Publish(ctx, next)
	if len(broker.sent) != 4 {
		t.Fatalf("new observed change not forwarded: %d sends", len(broker.sent))
	}
}

func TestNotificationsSkipRepeatedStatusWhateverTheSource(t *testing.T) {
	parties := []string{"s1", "w1"}
	change := events.JobStatusChangedPayload{OldStatus: domain.JobStatusPending, NewStatus: domain.JobStatusInProgress}
	direct := events.New(events.EventJobStatusChanged, "j1", events.Actor{UserID: "w1", Role: domain.RoleWorker}, parties, change)
	observed := events.New(events.EventJobStatusChanged, "j1", events.Actor{}, parties, change)

	cases := []struct {
		name  string
		order []events.Event
	}{
		{"action then observation", []events.Event{direct, observed}},
		{"observation then action", []events.Event{observed, direct}},
		{"action repeated", []events.Event{direct, direct}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			broker := &fakeBroker{}
			dispatcher := events.NewInMemoryDispatcher()
			NewNotificationService(dispatcher, nil, mq.New(broker)).RegisterHandlers()
			for _, event := range tc.order {
				_ = dispatcher.Publish(context.Background(), event)
			}
			if len(broker.sent) != 2 {
				t.Fatalf("expected one forward per party, got %d", len(broker.sent))
			}
		})
	}
}

func TestNotificationsForgetOldestFinishedJobs(t *testing.T) {
	n := NewNotificationService(nil, nil, nil)
	n.finishedCap = 2
	settled := func(jobID string) events.Event {
		return events.New(events.EventJobSettled, jobID, events.Actor{UserID: "s1", Role: domain.RoleSeeker}, nil, nil)
	}

	for _, id := range []string{"j1", "j2", "j3"} {
		if n.alreadyNotified(settled(id)) {
			t.Fatalf("first settlement of %s treated as duplicate", id)
		}
	}
	if len(n.lastStatus) != 2 || len(n.finished) != 2 {
		t.Fatalf("expected two remembered jobs, got %d statuses and %d finished", len(n.lastStatus), len(n.finished))
	}
	if _, ok := n.lastStatus["j1"]; ok {
		t.Fatalf("oldest finished job still remembered")
	}
	if !n.alreadyNotified(settled("j3")) {
		t.Fatalf("repeat settlement of a remembered job was not skipped")
	}

	pending := events.New(events.EventJobCreated, "j4", events.Actor{UserID: "s1"}, nil, nil)
	n.alreadyNotified(pending)
	if len(n.finished) != 2 || n.lastStatus["j4"] != domain.JobStatusPending {
		t.Fatalf("open job should be remembered without counting as finished")
	}
}
