package worker

import (
	"context"

	"github.com/skilllink/marketplace/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a poller
// is given, runs it in the background until ctx is done.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, poller *JobPoller) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if poller != nil {
		go poller.Run(ctx)
	}
}
