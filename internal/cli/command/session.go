// Package command provides CLI command definitions for authgate-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/core/service"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Manage the stored session",
		Subcommands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "Keep the background refresher armed until interrupted",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Value:   domain.RefreshInterval,
						Usage:   "Refresh interval (e.g., 45m, 30s)",
					},
				},
				Action: sessionWatch,
			},
		},
	}
}

func sessionWatch(c *cli.Context) error {
	s, err := openStack(c, service.WithSchedulerOptions(
		service.WithInterval(c.Duration("interval")),
	))
	if err != nil {
		return err
	}
	defer s.Close()

	_, cancel, err := s.start()
	if err != nil {
		return err
	}
	defer cancel()

	state := s.controller.Snapshot()
	if !state.Authenticated() {
		return fmt.Errorf("no stored session, run login first")
	}

	// Start armed the refresher when it restored the session. Hold the
	// process open so the rotation keeps running.
	fmt.Printf("Watching session for %s, refreshing every %s (Ctrl-C to stop)\n",
		state.Identity.Email, c.Duration("interval"))

	waitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-waitCtx.Done()

	fmt.Println("Stopped")
	return nil
}
