package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/service"
)

func (c *cli) signupCmd() *cobra.Command {
	var (
		input service.SignupInput
		role  string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in as it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Role = domain.Role(strings.ToUpper(role))
			res, err := c.app.Auth.Signup(cmd.Context(), input)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Signed up %s (%s) as %s with balance %d\n",
				res.User.Name, res.User.ID, res.User.Role, res.User.Balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleSeeker), "SEEKER or WORKER")
	cmd.Flags().StringVar(&input.Category, "category", "", "service category (workers)")
	cmd.Flags().Int64Var(&input.HourlyRate, "rate", 0, "hourly rate (workers)")
	cmd.Flags().StringVar(&input.Bio, "bio", "", "short bio (workers)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password, role string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an existing seeker or worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Auth.Login(cmd.Context(), email, password, domain.Role(strings.ToUpper(role)))
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", res.User.Name, res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleSeeker), "SEEKER or WORKER")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			user, err := c.app.UserRepo.GetByID(cmd.Context(), session.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "%s (%s) %s, balance %d\n", user.Name, user.ID, user.Role, user.Balance)
			if user.IsWorker() {
				printf(out, "%s at %d/hr, rated %.1f from %d reviews, available: %t\n",
					user.Category, user.HourlyRate, user.Rating, user.ReviewCount, user.IsAvailable)
			}
			return nil
		},
	}
}

func (c *cli) reseedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reseed",
		Short: "Wipe every table and restore the demo workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Reseed(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Store reset and reseeded\n")
			return nil
		},
	}
}
