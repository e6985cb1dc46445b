package domain

import "time"

// JobStatus enumerates lifecycle states for jobs.
type JobStatus string

const (
	JobStatusPending         JobStatus = "PENDING"
	JobStatusInProgress      JobStatus = "IN_PROGRESS"
	JobStatusCompleted       JobStatus = "COMPLETED"
	JobStatusPaidAndReviewed JobStatus = "PAID_AND_REVIEWED"
	JobStatusCancelled       JobStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusPaidAndReviewed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusPaidAndReviewed || s == JobStatusCancelled
}

// Job is a unit of requested work between one seeker and one worker. Price is
// fixed at hire time from the worker's hourly rate.
type Job struct {
	ID          string    `json:"id"`
	SeekerID    string    `json:"seekerId"`
	SeekerName  string    `json:"seekerName"`
	WorkerID    string    `json:"workerId"`
	WorkerName  string    `json:"workerName"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}
