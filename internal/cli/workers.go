package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skilllink/marketplace/internal/domain"
)

func (c *cli) workersCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List available workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workers, err := c.app.Jobs.AvailableWorkers(cmd.Context(), category)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRATE\tRATING\tREVIEWS")
			for _, w := range workers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%d\n", w.ID, w.Name, w.Category, w.HourlyRate, w.Rating, w.ReviewCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", domain.CategoryAll, "filter by category")
	return cmd
}

func (c *cli) availabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "availability on|off|toggle",
		Short:     "Change whether seekers can hire you",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := c.session(ctx)
			if err != nil {
				return err
			}
			var user *domain.User
			switch strings.ToLower(args[0]) {
			case "on":
				user, err = c.app.Jobs.SetAvailability(ctx, session, true)
			case "off":
				user, err = c.app.Jobs.SetAvailability(ctx, session, false)
			default:
				user, err = c.app.Jobs.ToggleAvailability(ctx, session)
			}
			if err != nil {
				return err
			}
			state := "unavailable"
			if user.IsAvailable {
				state = "available"
			}
			printf(cmd.OutOrStdout(), "%s is now %s\n", user.Name, state)
			return nil
		},
	}
}

func (c *cli) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Suggest a category and price for what you need",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Classifier.Analyze(cmd.Context(), strings.Join(args, " "))
			printf(cmd.OutOrStdout(), "%s (about %d/hr): %s\n", s.Category, s.EstimatedPrice, s.Reason)
			return nil
		},
	}
}
