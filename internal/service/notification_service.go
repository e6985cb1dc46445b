package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/mq"
)

// NotificationService logs domain events and forwards them to each involved
// user's broker channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	queue      *mq.MQ

	mu          sync.Mutex
	lastStatus  map[string]domain.JobStatus
	finished    []string
	finishedCap int
}

// finishedJobsKept bounds how many terminal jobs stay remembered for
// duplicate suppression.
const finishedJobsKept = 256

// NewNotificationService creates the service. A nil queue only logs.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, queue *mq.MQ) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:  dispatcher,
		logger:      logger,
		queue:       queue,
		lastStatus:  make(map[string]domain.JobStatus),
		finishedCap: finishedJobsKept,
	}
}

// RegisterHandlers subscribes to every event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes() {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	if n.alreadyNotified(event) {
		n.logger.Debug("skipping observed change already notified",
			zap.String("event_type", string(event.Type)),
			zap.String("job_id", event.JobID))
		return nil
	}

	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("job_id", event.JobID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Strings("recipients", event.Recipients),
		zap.Any("payload", event.Payload))

	if n.queue == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	attrs := map[string]string{"type": string(event.Type), "event_id": event.ID}
	seen := make(map[string]struct{}, len(event.Recipients))
	var errs []error
	for _, userID := range event.Recipients {
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		channel := mq.NotificationChannel(userID)
		if _, err := n.queue.Publish(ctx, channel, data, attrs); err != nil {
			n.logger.Warn("notification forward failed", zap.String("channel", channel), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// alreadyNotified records the job status carried by event and reports whether
// that status was already sent for the job, by a direct action or by an
// earlier observation. Terminal jobs are forgotten oldest first once more than
// finishedCap of them are remembered.
func (n *NotificationService) alreadyNotified(event events.Event) bool {
	status, ok := statusOf(event)
	if !ok {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	prev, known := n.lastStatus[event.JobID]
	if known && prev == status {
		return true
	}
	n.lastStatus[event.JobID] = status
	if status.Terminal() {
		n.finished = append(n.finished, event.JobID)
		for len(n.finished) > n.finishedCap {
			delete(n.lastStatus, n.finished[0])
			n.finished = n.finished[1:]
		}
	}
	return false
}

func statusOf(event events.Event) (domain.JobStatus, bool) {
	if event.JobID == "" {
		return "", false
	}
	switch event.Type {
	case events.EventJobCreated:
		return domain.JobStatusPending, true
	case events.EventJobSettled:
		return domain.JobStatusPaidAndReviewed, true
	case events.EventJobStatusChanged:
		if p, ok := event.Payload.(events.JobStatusChangedPayload); ok {
			return p.NewStatus, true
		}
	}
	return "", false
}
