package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/service"
)

func (c *cli) hireCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "hire <workerID>",
		Short: "Send a job request to a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			job, err := c.app.Jobs.CreateJob(ctx, session, service.CreateJobInput{WorkerID: args[0], Description: description})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Requested %s for %d: job %s is %s\n", job.WorkerName, job.Price, job.ID, job.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what you need done")
	return cmd
}

func (c *cli) jobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Show your active jobs, or your dashboard as a worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if session.Role == domain.RoleWorker {
				dash, err := c.app.Jobs.WorkerDashboard(ctx, session)
				if err != nil {
					return err
				}
				for _, section := range []struct {
					title string
					jobs  []domain.Job
				}{{"Pending", dash.Pending}, {"Active", dash.Active}, {"History", dash.History}} {
					printf(out, "%s (%d)\n", section.title, len(section.jobs))
					if err := printJobs(out, section.jobs); err != nil {
						return err
					}
				}
				return nil
			}
			jobs, err := c.app.Jobs.SeekerActiveJobs(ctx, session)
			if err != nil {
				return err
			}
			return printJobs(out, jobs)
		},
	}
}

func (c *cli) transitionCmd(name, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <jobID>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			var job *domain.Job
			switch name {
			case "accept":
				job, err = c.app.Jobs.AcceptJob(ctx, session, args[0])
			case "decline":
				job, err = c.app.Jobs.DeclineJob(ctx, session, args[0])
			default:
				job, err = c.app.Jobs.CompleteJob(ctx, session, args[0])
			}
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Job %s %s, now %s\n", job.ID, verb, job.Status)
			return nil
		},
	}
}

func (c *cli) settleCmd() *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "settle <jobID>",
		Short: "Pay for a completed job and review the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			res, err := c.app.Settlement.Settle(ctx, session, args[0], rating, comment)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Paid %d to %s. Your balance is %d; %s is now rated %.1f from %d reviews\n",
				res.Job.Price, res.Worker.Name, res.Seeker.Balance, res.Worker.Name, res.Worker.Rating, res.Worker.ReviewCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "review comment")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func printJobs(w io.Writer, jobs []domain.Job) error {
	if len(jobs) == 0 {
		printf(w, "  no jobs\n")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tSTATUS\tCATEGORY\tSEEKER\tWORKER\tPRICE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%d\n", j.ID, j.Status, j.Category, j.SeekerName, j.WorkerName, j.Price)
	}
	return tw.Flush()
}
