// Package cli implements the skilllinkctl command tree. Each invocation acts
// as the user recorded in the store's session pointer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skilllink/marketplace/internal/app"
	"github.com/skilllink/marketplace/internal/domain"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// BuildFunc constructs the application for one command run.
type BuildFunc func(ctx context.Context) (*app.App, error)

type cli struct {
	build BuildFunc
	app   *app.App
}

// NewRootCommand returns the command tree. build is called once before any
// subcommand runs; the caller closes what it built.
func NewRootCommand(build BuildFunc) *cobra.Command {
	c := &cli{build: build}
	root := &cobra.Command{
		Use:           "skilllinkctl",
		Short:         "Hire local workers and manage jobs from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.AddCommand(
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.workersCmd(),
		c.availabilityCmd(),
		c.hireCmd(),
		c.jobsCmd(),
		c.transitionCmd("accept", "Accept a pending job", "accepted"),
		c.transitionCmd("decline", "Decline a pending job", "declined"),
		c.transitionCmd("complete", "Mark an in-progress job as done", "completed"),
		c.settleCmd(),
		c.classifyCmd(),
		c.watchCmd(),
		c.reseedCmd(),
	)
	return root
}

func (c *cli) session(ctx context.Context) (domain.Session, error) {
	session, err := c.app.Auth.CurrentSession(ctx)
	if errors.Is(err, apperrors.ErrAuthenticationFailed) {
		return domain.Session{}, errors.New("not logged in; run skilllinkctl login first")
	}
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Describe renders err for the terminal, using the domain message when
// there is one.
func Describe(err error) string {
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return fmt.Sprintf("%s: %s", de.Code, de.Message)
	}
	return err.Error()
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
