package domain

import (
	"fmt"

	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// JobEvent names an action that moves a job between statuses.
type JobEvent string

const (
	JobEventAccept   JobEvent = "accept"
	JobEventDecline  JobEvent = "decline"
	JobEventComplete JobEvent = "complete"
	JobEventSettle   JobEvent = "settle"
)

// Actor returns the role allowed to fire the event.
func (e JobEvent) Actor() Role {
	if e == JobEventSettle {
		return RoleSeeker
	}
	return RoleWorker
}

// NextStatus applies event to from. Pairs outside the lifecycle table yield an
// INVALID_TRANSITION error.
func NextStatus(from JobStatus, event JobEvent) (JobStatus, error) {
	switch from {
	case JobStatusPending:
		switch event {
		case JobEventAccept:
			return JobStatusInProgress, nil
		case JobEventDecline:
			return JobStatusCancelled, nil
		}
	case JobStatusInProgress:
		if event == JobEventComplete {
			return JobStatusCompleted, nil
		}
	case JobStatusCompleted:
		if event == JobEventSettle {
			return JobStatusPaidAndReviewed, nil
		}
	case JobStatusPaidAndReviewed, JobStatusCancelled:
	}
	return from, invalidTransition(from, event)
}

// EventFor maps a requested status change back to the event that causes it.
func EventFor(from, to JobStatus) (JobEvent, error) {
	for _, event := range []JobEvent{JobEventAccept, JobEventDecline, JobEventComplete, JobEventSettle} {
		next, err := NextStatus(from, event)
		if err == nil && next == to {
			return event, nil
		}
	}
	return "", apperrors.NewInvalidTransition(
		fmt.Sprintf("cannot move job from %s to %s", from, to),
		map[string]any{"from": from, "to": to},
	)
}

func invalidTransition(from JobStatus, event JobEvent) error {
	return apperrors.NewInvalidTransition(
		fmt.Sprintf("cannot %s a job in status %s", event, from),
		map[string]any{"from": from, "event": event},
	)
}
