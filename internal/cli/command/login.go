// Package command provides CLI command definitions for authgate-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/kehilahub/authgate/internal/cli/output"
	"github.com/kehilahub/authgate/internal/core/domain"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authenticate and store a session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "tenant",
				Aliases: []string{"t"},
				Usage:   "Tenant slug to log into directly (skips discovery)",
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Password (prompted when omitted; prefer the prompt)",
				EnvVars: []string{"AUTHGATE_PASSWORD"},
			},
		},
		Action: loginAction,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke the stored session and wipe the vault",
		Action: logoutAction,
	}
}

func loginAction(c *cli.Context) error {
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

	if state := s.controller.Snapshot(); state.Authenticated() {
		return fmt.Errorf("already logged in as %s, run logout first", state.Identity.Email)
	}

	password := c.String("password")
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	creds := domain.Credentials{
		Email:      c.String("email"),
		Password:   password,
		TenantHint: c.String("tenant"),
	}

	spin := output.NewSpinner(os.Stderr, "Authenticating")
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spin.Start()
	}
	err = s.controller.Login(ctx, creds)
	spin.Stop()
	if err != nil {
		return err
	}

	state := s.controller.Snapshot()
	if state.Tenant != nil {
		fmt.Printf("Logged in as %s (%s) on tenant %s\n", state.Identity.Email, state.Identity.Role, state.Tenant.Slug)
	} else {
		fmt.Printf("Logged in as %s (%s) on the hub\n", state.Identity.Email, state.Identity.Role)
	}
	return nil
}

func logoutAction(c *cli.Context) error {
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
		fmt.Println("No stored session")
		return nil
	}

	if err := s.controller.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal, pass --password or AUTHGATE_PASSWORD")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
