// Package command provides CLI command definitions for authgate-cli.
package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kehilahub/authgate/internal/cli/output"
	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/pkg/token"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the stored session and identity",
		Action: statusAction,
	}
}

// statusView is the printable shape of a restored session.
type statusView struct {
	Status       string `json:"status" yaml:"status"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Tenant       string `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	AccessToken  string `json:"access_token_hash,omitempty" yaml:"access_token_hash,omitempty"`
	RefreshToken string `json:"refresh_token_hash,omitempty" yaml:"refresh_token_hash,omitempty"`
	IssuedAgo    string `json:"issued_ago,omitempty" yaml:"issued_ago,omitempty"`
}

func statusAction(c *cli.Context) error {
	s, err := openStack(c)
	if err != nil {
		return err
	}
	defer s.Close()

	_, cancel, err := s.start()
	if err != nil {
		return err
	}
	defer cancel()

	view := buildStatusView(s.controller.Snapshot())
	return renderStatus(s.format(), view)
}

func buildStatusView(state domain.State) statusView {
	view := statusView{Status: string(state.Status)}
	if !state.Authenticated() {
		return view
	}

	if state.Identity != nil {
		view.Email = state.Identity.Email
		view.Name = state.Identity.Name
		view.Role = string(state.Identity.Role)
	}
	if state.Tenant != nil {
		view.Tenant = state.Tenant.Slug
	} else {
		view.Tenant = "hub"
	}

	// Only hash prefixes leave the vault; the tokens themselves stay put.
	view.AccessToken = token.Hash(state.Session.AccessToken)[:12]
	view.RefreshToken = token.Hash(state.Session.RefreshToken)[:12]
	if state.Session.IssuedAt > 0 {
		view.IssuedAgo = state.Session.Age(time.Now()).Round(time.Second).String()
	}
	return view
}

func renderStatus(format output.Format, view statusView) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(format)
		return formatter.Format(os.Stdout, view)
	default:
		table := &output.Table{Headers: []string{"FIELD", "VALUE"}}
		table.AddRow("status", view.Status)
		if view.Email != "" {
			table.AddRow("email", view.Email)
			table.AddRow("name", view.Name)
			table.AddRow("role", view.Role)
			table.AddRow("tenant", view.Tenant)
			table.AddRow("access token", view.AccessToken)
			table.AddRow("refresh token", view.RefreshToken)
			if view.IssuedAgo != "" {
				table.AddRow("issued", view.IssuedAgo+" ago")
			}
		}
		return table.Render(os.Stdout)
	}
}

// RefreshCommand returns the refresh command.
func RefreshCommand() *cli.Command {
	return &cli.Command{
		Name:   "refresh",
		Usage:  "Rotate the stored token pair once",
		Action: refreshAction,
	}
}

func refreshAction(c *cli.Context) error {
	s, err := openStack(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel, err := s.start()
	if err != nil {
		return err
	}
	defer cancel()

	if !s.controller.Snapshot().Authenticated() {
		return fmt.Errorf("no stored session, run login first")
	}

	if err := s.controller.Refresh(ctx); err != nil {
		return err
	}

	state := s.controller.Snapshot()
	fmt.Printf("Rotated, new access token %s\n", token.Hash(state.Session.AccessToken)[:12])
	return nil
}
