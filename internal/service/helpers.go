package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/repository"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// publish dispatches event after a committed write. Handler failures are
// logged and never undo the write.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func translateNotFound(err error, resource, key, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{key: id})
	}
	return err
}
