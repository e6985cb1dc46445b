package cli

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/mq"
	"github.com/skilllink/marketplace/internal/repository"
	"github.com/skilllink/marketplace/internal/worker"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow changes to your jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			filter := repository.JobFilter{SeekerID: session.UserID}
			if session.Role == domain.RoleWorker {
				filter = repository.JobFilter{WorkerID: session.UserID}
			}
			poller := worker.NewJobPoller(c.app.Store, filter, c.app.Config.Poll.Interval(), c.app.Logger,
				func(_ context.Context, changes []worker.JobChange) {
					for _, ch := range changes {
						if ch.Created {
							printf(out, "new job %s from %s: %s\n", ch.Job.ID, ch.Job.SeekerName, ch.Job.Status)
							continue
						}
						printf(out, "job %s: %s -> %s\n", ch.Job.ID, ch.Previous, ch.Job.Status)
					}
				})

			printf(out, "Watching jobs for %s, press Ctrl+C to stop\n", session.Name)
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				poller.Run(ctx)
				return nil
			})
			if c.app.Queue != nil {
				g.Go(func() error {
					return c.app.Queue.Subscribe(ctx, mq.NotificationChannel(session.UserID), func(_ context.Context, msg mq.Message) error {
						var event events.Event
						if err := json.Unmarshal(msg.Data, &event); err != nil {
							c.app.Logger.Warn("undecodable notification", zap.String("id", msg.ID), zap.Error(err))
							return nil
						}
						printf(out, "notification %s for job %s\n", event.Type, event.JobID)
						return nil
					})
				})
			}
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
