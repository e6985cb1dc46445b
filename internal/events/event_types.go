package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/skilllink/marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp              EventType = "user_signed_up"
	EventJobCreated                EventType = "job_created"
	EventJobStatusChanged          EventType = "job_status_changed"
	EventJobSettled                EventType = "job_settled"
	EventWorkerAvailabilityChanged EventType = "worker_availability_changed"
)

// AllTypes lists every event type.
func AllTypes() []EventType {
	return []EventType{
		EventUserSignedUp,
		EventJobCreated,
		EventJobStatusChanged,
		EventJobSettled,
		EventWorkerAvailabilityChanged,
	}
}

// Actor encapsulates actor metadata for an event. It is empty for changes
// observed by the poller, whose author is unknown.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFor converts a session.
func ActorFor(s domain.Session) Actor {
	return Actor{UserID: s.UserID, Role: s.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	JobID      string      `json:"job_id,omitempty"`
	Actor      Actor       `json:"actor"`
	Recipients []string    `json:"recipients"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, jobID string, actor Actor, recipients []string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		JobID:      jobID,
		Actor:      actor,
		Recipients: recipients,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// JobParties returns the seeker and worker of job as recipients.
func JobParties(job domain.Job) []string {
	return []string{job.SeekerID, job.WorkerID}
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	Category string      `json:"category,omitempty"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	SeekerName string `json:"seeker_name"`
	WorkerName string `json:"worker_name"`
	Category   string `json:"category"`
	Price      int64  `json:"price"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
	Event     domain.JobEvent  `json:"event,omitempty"`
}

// JobSettledPayload payload.
type JobSettledPayload struct {
	Amount          int64   `json:"amount"`
	Rating          int     `json:"rating"`
	WorkerRating    float64 `json:"worker_rating"`
	WorkerReviews   int     `json:"worker_reviews"`
	SeekerBalance   int64   `json:"seeker_balance"`
	WorkerBalance   int64   `json:"worker_balance"`
	ReviewerComment string  `json:"comment,omitempty"`
}

// WorkerAvailabilityChangedPayload payload.
type WorkerAvailabilityChangedPayload struct {
	IsAvailable bool `json:"is_available"`
}
