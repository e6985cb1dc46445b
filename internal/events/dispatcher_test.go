package events

import (
	"context"
	"errors"
	"testing"

	"github.com/skilllink/marketplace/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var created, settled int
	d.Subscribe(EventJobCreated, func(context.Context, Event) error { created++; return nil })
	d.Subscribe(EventJobSettled, func(context.Context, Event) error { settled++; return nil })

	job := domain.Job{ID: "j1", SeekerID: "s1", WorkerID: "w1"}
	if err := d.Publish(context.Background(), New(EventJobCreated, job.ID, Actor{}, JobParties(job), nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if created != 1 || settled != 0 {
		t.Fatalf("unexpected deliveries created=%d settled=%d", created, settled)
	}
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	var ran int
	d.Subscribe(EventJobCreated, func(context.Context, Event) error { ran++; return boom })
	d.Subscribe(EventJobCreated, func(context.Context, Event) error { ran++; return nil })

	err := d.Publish(context.Background(), New(EventJobCreated, "j1", Actor{}, nil, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined boom, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected both handlers to run, ran=%d", ran)
	}
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventUserSignedUp, "", ActorFor(domain.Session{UserID: "s1", Role: domain.RoleSeeker}), []string{"s1"}, nil)
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("event not stamped: %+v", e)
	}
	if e.Actor.UserID != "s1" || e.Actor.Role != domain.RoleSeeker {
		t.Fatalf("unexpected actor %+v", e.Actor)
	}
}
